package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/5hells/icm/internal/compositor"
	"github.com/5hells/icm/internal/config"
	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/testutil/testlog"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type chanLauncher chan string

func (l chanLauncher) Launch(_ context.Context, command string) error {
	l <- command
	return nil
}

func startCompositor(t *testing.T, launcher compositor.Launcher) (string, *compositor.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icm.sock")
	store := compositor.NewStore(config.Default().Server.MonitorInfos(), launcher)
	srv := compositor.NewServer(compositor.DefaultServerConfig(), store)
	ln, err := compositor.Listen(path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return path, store
}

func runCtl(t *testing.T, socket string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--socket", socket}, args...), &out)
	return out.String(), err
}

func TestMonitorsAndScreenText(t *testing.T) {
	testlog.Start(t)
	socket, _ := startCompositor(t, nil)

	out, err := runCtl(t, socket, "monitors")
	if err != nil {
		t.Fatalf("monitors: %v", err)
	}
	if !strings.Contains(out, "ICM-0") || !strings.Contains(out, "1920x1080") {
		t.Fatalf("unexpected monitors output:\n%s", out)
	}

	out, err = runCtl(t, socket, "screen")
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if strings.TrimSpace(out) != "1920x1080 scale 1" {
		t.Fatalf("unexpected screen output %q", out)
	}
}

func TestWindowsYAML(t *testing.T) {
	testlog.Start(t)
	socket, store := startCompositor(t, nil)
	if err := store.AddToplevel(protocol.ToplevelWindow{
		WindowID: 7, Width: 800, Height: 600, Visible: true, Title: "term", AppID: "foot",
	}); err != nil {
		t.Fatalf("add toplevel: %v", err)
	}

	out, err := runCtl(t, socket, "-o", "yaml", "windows")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	var got []protocol.ToplevelWindow
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("parse yaml: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].WindowID != 7 || got[0].Title != "term" || got[0].AppID != "foot" {
		t.Fatalf("unexpected windows: %+v", got)
	}
}

func TestCreateInfoDestroy(t *testing.T) {
	testlog.Start(t)
	socket, _ := startCompositor(t, nil)

	out, err := runCtl(t, socket, "create-window", "--id", "42", "--x", "10", "--y", "20", "--width", "300", "--height", "200")
	if err != nil {
		t.Fatalf("create-window: %v", err)
	}
	if !strings.Contains(out, "10,20") || !strings.Contains(out, "300x200") {
		t.Fatalf("unexpected create output:\n%s", out)
	}

	if _, err := runCtl(t, socket, "destroy-window", "42"); err != nil {
		t.Fatalf("destroy-window: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := runCtl(t, socket, "--timeout", "100ms", "info", "42")
		if err != nil && strings.Contains(err.Error(), "no answer") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("window 42 still answers after destroy: %v", err)
		}
	}
}

func TestLaunchJoinsArguments(t *testing.T) {
	testlog.Start(t)
	launched := make(chanLauncher, 1)
	socket, _ := startCompositor(t, launched)

	if _, err := runCtl(t, socket, "launch", "foot", "--server"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	select {
	case got := <-launched:
		if got != "foot --server" {
			t.Fatalf("unexpected command %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("launch never reached the compositor")
	}
}

func TestWatchRecordAndReplay(t *testing.T) {
	testlog.Start(t)
	socket, store := startCompositor(t, nil)
	record := filepath.Join(t.TempDir(), "watch.cbor")

	ctx, cancel := context.WithCancel(context.Background())
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"--socket", socket, "watch", "--record", record}, out)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for id := uint32(100); !strings.Contains(out.String(), "window_created"); id++ {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("no window_created event seen:\n%s", out.String())
		}
		if err := store.AddToplevel(protocol.ToplevelWindow{WindowID: id, Width: 10, Height: 10}); err != nil {
			t.Fatalf("add toplevel: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop on cancel")
	}

	var replay bytes.Buffer
	if err := run(context.Background(), []string{"replay", record}, &replay); err != nil {
		t.Fatalf("replay: %v", err)
	}
	text := replay.String()
	if !strings.Contains(text, "send subscribe_window_events") {
		t.Fatalf("replay missing subscription:\n%s", text)
	}
	if !strings.Contains(text, "recv window_created") {
		t.Fatalf("replay missing event:\n%s", text)
	}
}

func TestConcurrentCommandsAgainstLiveServer(t *testing.T) {
	testlog.Start(t)
	socket, _ := startCompositor(t, nil)

	const workers, rounds = 4, 5
	errc := make(chan error, workers*rounds)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				var out bytes.Buffer
				errc <- run(context.Background(), []string{"--socket", socket, "screen"}, &out)
			}
		}()
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		if err != nil {
			t.Fatalf("screen: %v", err)
		}
	}
}

func TestUsageErrors(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), nil, &out); err == nil {
		t.Fatalf("expected error without command")
	}
	if !strings.Contains(out.String(), "commands:") {
		t.Fatalf("expected help text, got %q", out.String())
	}
	if err := run(context.Background(), []string{"bogus"}, &out); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if err := run(context.Background(), []string{"-o", "json", "monitors"}, &out); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
	if err := run(context.Background(), []string{"info", "nope"}, &out); err == nil {
		t.Fatalf("expected error for bad window id")
	}
}

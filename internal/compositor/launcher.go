package compositor

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrEmptyCommand = errors.New("compositor: empty launch command")

// Launcher starts the program named by a LaunchApp request.
type Launcher interface {
	Launch(ctx context.Context, command string) error
}

// ShellLauncher runs the command through Shell -c, detached from the
// request; the child outlives the client connection.
type ShellLauncher struct {
	Shell string
}

func (l ShellLauncher) Launch(_ context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	shell := l.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	log.Info().Str("command", command).Int("pid", cmd.Process.Pid).Msg("launched")
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// LogLauncher only records the request.
type LogLauncher struct{}

func (LogLauncher) Launch(_ context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	log.Info().Str("command", command).Msg("launch requested")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/5hells/icm/internal/client"
	"github.com/5hells/icm/internal/config"
	"github.com/5hells/icm/internal/logging"
	"github.com/5hells/icm/internal/observability"
)

func main() {
	observability.InitLogger("icmctl")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "icmctl: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"monitors":       {"monitors", "list connected monitors", cmdMonitors},
	"screen":         {"screen", "show the combined screen dimensions", cmdScreen},
	"windows":        {"windows [--visible]", "list toplevel windows", cmdWindows},
	"info":           {"info <window-id>", "show everything known about one window", cmdInfo},
	"create-window":  {"create-window --id N [--x X --y Y --width W --height H --layer L --color 0xAARRGGBB]", "create a window", cmdCreateWindow},
	"destroy-window": {"destroy-window <window-id>", "destroy a window", cmdDestroyWindow},
	"launch":         {"launch <command...>", "ask the compositor to start a program", cmdLaunch},
	"watch":          {"watch [--mask N] [--global] [--record file]", "print compositor events until interrupted", cmdWatch},
	"replay":         {"replay <file>", "decode a capture written by watch --record", cmdReplay},
}

// app carries the global flags shared by every command.
type app struct {
	out     io.Writer
	output  string
	socket  string
	timeout time.Duration
	opts    client.Options
}

func run(ctx context.Context, args []string, out io.Writer) error {
	a := &app{out: out}
	var (
		configPath string
		verbose    bool
	)
	flagSet := pflag.NewFlagSet("icmctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to TOML config for socket and session settings")
	flagSet.StringVarP(&a.socket, "socket", "s", "", "compositor socket (default $ICM_SOCKET or $XDG_RUNTIME_DIR/icm.sock)")
	flagSet.StringVarP(&a.output, "output", "o", "text", "output format: text or yaml")
	flagSet.DurationVar(&a.timeout, "timeout", 5*time.Second, "deadline for one query")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log connection activity to stderr")
	flagSet.Usage = func() { printHelp(out, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// main installs the logger; run only adjusts the level.
	level := "warn"
	if verbose {
		level = "debug"
	}
	logging.SetLevel(level)

	if a.output != "text" && a.output != "yaml" {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.socket == "" {
		a.socket = cfg.Socket
	}
	a.opts = client.DefaultOptions()
	a.opts.Session = cfg.Session
	a.opts.MaxConnectAttempts = cfg.ConnectAttempts

	if flagSet.NArg() == 0 {
		printHelp(out, flagSet)
		return errors.New("command required")
	}
	name := flagSet.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.run(ctx, a, flagSet.Args()[1:])
}

// connect dials the compositor with the configured options plus extra.
func (a *app) connect(ctx context.Context, extra func(*client.Options)) (*client.Client, error) {
	opts := a.opts
	if extra != nil {
		extra(&opts)
	}
	return client.Connect(ctx, a.socket, opts)
}

// queryContext bounds one request/response exchange.
func (a *app) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func printHelp(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(out, "usage: icmctl [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %s\n", name, commands[name].help)
		fmt.Fprintf(out, "  %-16s   icmctl %s\n", "", commands[name].usage)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	fmt.Fprint(out, flagSet.FlagUsages())
}

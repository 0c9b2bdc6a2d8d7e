package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/5hells/icm/internal/compositor"
	"github.com/5hells/icm/internal/config"
	"github.com/5hells/icm/internal/logging"
	"github.com/5hells/icm/internal/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "icmd: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	socket      string
	metricsAddr string
	writeConfig string
	force       bool
}

func parseFlags(args []string) (options, bool, error) {
	var opts options
	flagSet := pflag.NewFlagSet("icmd", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to TOML config (defaults built in when empty)")
	flagSet.StringVar(&opts.socket, "socket", "", "listen socket path (overrides config)")
	flagSet.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	flagSet.StringVar(&opts.writeConfig, "write-config", "", "write a starter config to this path and exit")
	flagSet.BoolVar(&opts.force, "force", false, "overwrite an existing file with --write-config")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, true, nil
		}
		return opts, false, err
	}
	if flagSet.NArg() > 0 {
		return opts, false, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	return opts, false, nil
}

func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.socket != "" {
		cfg.Socket = opts.socket
	}
	if opts.metricsAddr != "" {
		cfg.Server.MetricsAddr = opts.metricsAddr
	}
	return cfg, cfg.Validate()
}

func run(args []string) error {
	opts, help, err := parseFlags(args)
	if err != nil {
		return err
	}
	if help {
		return nil
	}
	if opts.writeConfig != "" {
		if err := config.WriteTemplate(opts.writeConfig, opts.force); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", opts.writeConfig)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.MetricsAddr != "" {
		observability.RegisterMetrics()
		go serveMetrics(ctx, cfg.Server.MetricsAddr, logger)
	}
	if opts.configPath != "" {
		go func() {
			if err := watchConfig(ctx, opts.configPath, logger); err != nil {
				logger.Warn().Err(err).Str("path", opts.configPath).Msg("config watch disabled")
			}
		}()
	}

	var launcher compositor.Launcher = compositor.LogLauncher{}
	if cfg.Server.Launch {
		launcher = compositor.ShellLauncher{}
	}
	store := compositor.NewStore(cfg.Server.MonitorInfos(), launcher)
	srv := compositor.NewServer(compositor.ServerConfig{
		Session:    cfg.Session,
		FrameRate:  cfg.Server.FrameRate,
		FrameBurst: cfg.Server.FrameBurst,
	}, store)

	logger.Info().
		Str("socket", cfg.Socket).
		Int("monitors", len(cfg.Server.Monitors)).
		Bool("launch", cfg.Server.Launch).
		Msg("icmd starting")
	if err := srv.ListenAndServe(ctx, cfg.Socket); err != nil {
		return err
	}
	logger.Info().Msg("icmd stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) zerolog.Logger {
	logger := observability.InitLogger("icmd")
	if cfg.JSON {
		lvl, _ := logging.ParseLevel(cfg.Level)
		logging.Apply(logging.Config{Level: lvl, Timestamp: true, JSON: true})
		logger = log.Logger.With().Str("app", "icmd").Logger()
		log.Logger = logger
	}
	logging.SetLevel(cfg.Level)
	return logger
}

func serveMetrics(ctx context.Context, addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
	}
}

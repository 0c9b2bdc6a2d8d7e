package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/5hells/icm/internal/config"
	"github.com/5hells/icm/internal/logging"
)

// watchConfig re-reads path whenever it changes and applies the log level.
// Other keys need a restart. The parent directory is watched so editors
// that replace the file by rename are still seen.
func watchConfig(ctx context.Context, path string, logger zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reloadLogLevel(abs, logger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func reloadLogLevel(path string, logger zerolog.Logger) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("config reload rejected")
		return
	}
	if !logging.SetLevel(cfg.Log.Level) {
		return
	}
	logger.Info().Str("level", cfg.Log.Level).Msg("log level reloaded")
}

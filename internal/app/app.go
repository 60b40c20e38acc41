// Package app wires configuration, logging and the macro engine together
// for the command line front end.
package app

import (
	"io"
	"os"

	"github.com/dshills/macrokit/internal/config"
	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/playback"
	"github.com/dshills/macrokit/internal/record"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the config file. Empty means $MACROKIT_CONFIG, then
	// the per-user default.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application holds the components every command shares.
type Application struct {
	config       *config.Config
	logger       *logging.Logger
	consolidator *consolidate.Consolidator
	opts         Options
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	path := app.opts.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		// No user config dir just means defaults.
		path, _ = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	app.config = cfg

	lc := cfg.Logging()
	if app.opts.LogOutput != nil {
		lc.Output = app.opts.LogOutput
	}
	app.logger = logging.New(lc)
	logging.Set(app.logger)
	app.logger.Debug("config loaded from %s", path)

	app.consolidator = consolidate.New(
		consolidate.WithLogger(app.logger),
		consolidate.WithThreshold(cfg.Consolidate.ThresholdMs),
	)
	return nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Consolidator returns the configured consolidator.
func (app *Application) Consolidator() *consolidate.Consolidator {
	return app.consolidator
}

// Player creates a player for injector using the playback settings.
// extra options are applied after the configured ones.
func (app *Application) Player(injector playback.Injector, extra ...playback.Option) (*playback.Player, error) {
	mode, err := playback.ParseMode(app.config.Playback.Mode)
	if err != nil {
		return nil, err
	}
	opts := []playback.Option{
		playback.WithLogger(app.logger),
		playback.WithMode(mode, app.config.Playback.Repeat),
		playback.WithMaxJumps(app.config.Playback.MaxJumps),
	}
	return playback.NewPlayer(injector, append(opts, extra...)...), nil
}

// RecordBuffer creates a capture buffer using the recording settings.
func (app *Application) RecordBuffer() *record.Buffer {
	return record.NewBuffer(app.config.RecordSettings())
}

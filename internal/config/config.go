package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/playback"
	"github.com/dshills/macrokit/internal/record"
)

// Config is the complete macrokit configuration.
type Config struct {
	Log         LogConfig         `toml:"log"`
	Consolidate ConsolidateConfig `toml:"consolidate"`
	Record      RecordConfig      `toml:"record"`
	Playback    PlaybackConfig    `toml:"playback"`
	Watch       WatchConfig       `toml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ConsolidateConfig configures the consolidator.
type ConsolidateConfig struct {
	// ThresholdMs is the accumulated delay at or below which no Delay step
	// is emitted.
	ThresholdMs uint32 `toml:"threshold_ms"`
}

// RecordConfig selects what a recording captures.
type RecordConfig struct {
	Keystrokes       bool   `toml:"keystrokes"`
	MouseClicks      bool   `toml:"mouse_clicks"`
	AbsoluteMovement bool   `toml:"absolute_movement"`
	PressDuration    bool   `toml:"press_duration"`
	StopKey          string `toml:"stop_key"`
}

// PlaybackConfig configures the player.
type PlaybackConfig struct {
	Mode     string `toml:"mode"`
	Repeat   int    `toml:"repeat"`
	MaxJumps int    `toml:"max_jumps"`
}

// WatchConfig configures log watching.
type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Consolidate: ConsolidateConfig{ThresholdMs: 1},
		Record: RecordConfig{
			Keystrokes:       true,
			MouseClicks:      true,
			AbsoluteMovement: true,
			PressDuration:    true,
			StopKey:          "F12",
		},
		Playback: PlaybackConfig{
			Mode:     "once",
			Repeat:   1,
			MaxJumps: 10000,
		},
		Watch: WatchConfig{DebounceMs: 100},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "macrokit", "config.toml"), nil
}

// Load builds the effective configuration: defaults, then the TOML file
// at path (a missing file is skipped), then MACROKIT_* environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv, os.Environ()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return c.Merge(path, data)
}

// Merge overlays TOML data onto c. Only keys present in data change.
// Unknown keys are an error so typos do not pass silently.
func (c *Config) Merge(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			pe.Line, pe.Column = decErr.Position()
		}
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			pe.Message = strings.TrimSpace(strictErr.String())
		}
		return pe
	}
	return nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Write saves c to path as TOML, creating the directory.
func (c *Config) Write(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	switch logging.Format(strings.ToLower(c.Log.Format)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		bad("log.format", "must be text or json", c.Log.Format)
	}
	if _, err := record.ParseStopKey(c.Record.StopKey); err != nil {
		bad("record.stop_key", err.Error(), c.Record.StopKey)
	}
	if _, err := playback.ParseMode(c.Playback.Mode); err != nil {
		bad("playback.mode", err.Error(), c.Playback.Mode)
	}
	if c.Playback.Repeat < 1 {
		bad("playback.repeat", "must be at least 1", c.Playback.Repeat)
	}
	if c.Playback.MaxJumps < 0 {
		bad("playback.max_jumps", "must not be negative", c.Playback.MaxJumps)
	}
	if c.Watch.DebounceMs < 1 {
		bad("watch.debounce_ms", "must be at least 1", c.Watch.DebounceMs)
	}
	return errors.Join(errs...)
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Format = logging.Format(strings.ToLower(c.Log.Format))
	return lc
}

// RecordSettings returns the capture filter.
func (c *Config) RecordSettings() record.Settings {
	return record.Settings{
		Keystrokes:       c.Record.Keystrokes,
		MouseClicks:      c.Record.MouseClicks,
		AbsoluteMovement: c.Record.AbsoluteMovement,
		PressDuration:    c.Record.PressDuration,
	}
}

// Debounce returns the watch debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// Package watch keeps a consolidated timeline in step with a growing raw
// event log.
//
// Every change to the log triggers a full re-read and a fresh
// consolidation of the entire history; nothing is carried over between
// passes. Changes are debounced, so a burst of appended lines costs a
// single pass.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/macrofile"
	"github.com/dshills/macrokit/internal/macro/step"
)

// DefaultDebounce is the quiet period after the last change before the
// log is re-read.
const DefaultDebounce = 100 * time.Millisecond

// Update is the result of one consolidation pass.
type Update struct {
	Steps    []step.Step
	Warnings []*consolidate.EventError
	// Events is the number of raw events read.
	Events int
	// Err is set when consolidation stopped early.
	Err error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.OrNull(l).WithComponent("watch")
	}
}

// WithConsolidator sets the consolidator used for every pass.
func WithConsolidator(c *consolidate.Consolidator) Option {
	return func(w *Watcher) {
		if c != nil {
			w.consolidator = c
		}
	}
}

// Watcher re-consolidates a raw event log whenever it changes.
type Watcher struct {
	path         string
	onUpdate     func(Update)
	debounce     time.Duration
	logger       *logging.Logger
	consolidator *consolidate.Consolidator

	last    []step.Step
	started bool
}

// New creates a watcher for the log at path. onUpdate is called from Run's
// goroutine whenever the consolidated timeline changes.
func New(path string, onUpdate func(Update), opts ...Option) (*Watcher, error) {
	if onUpdate == nil {
		return nil, errors.New("watch: onUpdate cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		onUpdate:     onUpdate,
		debounce:     DefaultDebounce,
		logger:       logging.Null,
		consolidator: consolidate.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Refresh reads the whole log and consolidates it. A log that does not
// exist yet reads as empty.
func (w *Watcher) Refresh() (Update, error) {
	events, err := macrofile.ReadLogFile(w.path, w.logger)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Update{}, err
	}
	res := w.consolidator.Run(events)
	return Update{
		Steps:    res.Steps,
		Warnings: res.Warnings,
		Events:   len(events),
		Err:      res.Err,
	}, nil
}

// Run watches the log until ctx is done. It publishes the current timeline
// first, then one update per debounced change that alters it.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	// Watching the directory also sees the log being created or replaced.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching %s", w.path)

	w.publish()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error: %v", err)

		case <-timer.C:
			w.publish()
		}
	}
}

func (w *Watcher) publish() {
	u, err := w.Refresh()
	if err != nil {
		w.logger.Warn("refresh failed: %v", err)
		return
	}
	if w.started && slices.Equal(u.Steps, w.last) {
		return
	}
	w.started = true
	w.last = u.Steps
	w.logger.Debug("%d events consolidated into %d steps", u.Events, len(u.Steps))
	w.onUpdate(u)
}

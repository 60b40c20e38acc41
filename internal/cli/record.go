package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/macrofile"
	"github.com/dshills/macrokit/internal/record"
	"github.com/dshills/macrokit/internal/watch"
)

// ErrNotTerminal indicates recording without an interactive terminal.
var ErrNotTerminal = errors.New("recording needs an interactive terminal")

func (r *runner) recordCommand() *cobra.Command {
	var stopKey string

	cmd := &cobra.Command{
		Use:   "record OUTPUT",
		Short: "Record keyboard and mouse input in this terminal",
		Long: `Record captures keys and mouse actions typed into the terminal until the
stop key (F12 by default) is pressed.

A .jsonl OUTPUT receives every raw event as it happens, so "macrokit watch"
can follow the recording live. Any other supported extension receives the
consolidated steps when recording ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			kind := app.KindOf(out)
			if kind == app.KindUnknown {
				return &app.OperationError{Op: "record", Target: out, Err: app.ErrUnsupportedFile}
			}
			if !r.isTerminal() {
				return ErrNotTerminal
			}

			cfg := r.app.Config()
			if stopKey == "" {
				stopKey = cfg.Record.StopKey
			}
			stop, err := record.ParseStopKey(stopKey)
			if err != nil {
				return err
			}

			logger := r.app.Logger()
			buf := r.app.RecordBuffer()
			if kind == app.KindLog {
				buf.SetSink(func(ev consolidate.RawEvent) {
					if err := macrofile.AppendLogFile(out, []consolidate.RawEvent{ev}); err != nil {
						logger.Error("append to %s: %v", out, err)
					}
				})
			}

			screen, err := r.openScreen()
			if err != nil {
				return &app.InitError{Component: "terminal", Err: err}
			}
			rec := record.NewTerminal(screen, buf,
				record.WithStopKey(stop),
				record.WithTerminalLogger(logger),
			)
			runErr := rec.Run(cmd.Context())
			screen.Fini()
			if runErr != nil && !errors.Is(runErr, cmd.Context().Err()) {
				return runErr
			}

			doc := r.app.Consolidate(rec.Events())
			if kind != app.KindLog {
				if doc.Err != nil {
					return doc.Err
				}
				if err := r.app.Save(doc, out); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s recorded, %s written to %s\n",
				buf.SessionID(), plural(buf.Len(), "event"), plural(doc.Steps.Len(), "step"), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&stopKey, "stop-key", "", "key that ends recording: F1-F24, Esc or Ctrl+A-Ctrl+Z (default from config)")
	return cmd
}

func (r *runner) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch LOG",
		Short: "Print the consolidated timeline of a raw event log as it grows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.KindOf(args[0]) != app.KindLog {
				return &app.OperationError{Op: "watch", Target: args[0], Err: fmt.Errorf("%w: expected a %s log", app.ErrUnsupportedFile, macrofile.LogExt)}
			}

			out := cmd.OutOrStdout()
			w, err := watch.New(args[0], func(u watch.Update) {
				fmt.Fprintf(out, "-- %s from %s --\n", plural(len(u.Steps), "step"), plural(u.Events, "event"))
				renderSteps(out, u.Steps, nil, false)
				if u.Err != nil {
					fmt.Fprintf(out, "-- stopped early: %v --\n", u.Err)
				}
			},
				watch.WithDebounce(r.app.Config().Debounce()),
				watch.WithLogger(r.app.Logger()),
				watch.WithConsolidator(r.app.Consolidator()),
			)
			if err != nil {
				return err
			}

			err = w.Run(cmd.Context())
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}
	return cmd
}

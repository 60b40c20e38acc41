package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/macrokit/internal/macro/macrofile"
	"github.com/dshills/macrokit/internal/playback"
)

func (r *runner) playCommand() *cobra.Command {
	var (
		mode     string
		repeat   int
		maxJumps int
		capture  string
		noWait   bool
	)

	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Replay a macro",
		Long: `Play walks the macro timeline, waiting out delays and following gotos, and
prints every input action it would inject.

With --capture the replay runs on a virtual clock and the injected actions
are written to a .jsonl raw event log instead. Consolidating that log gives
back the original timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := r.app.Config()
			fl := cmd.Flags()
			if fl.Changed("mode") {
				cfg.Playback.Mode = mode
			}
			if fl.Changed("repeat") {
				cfg.Playback.Repeat = repeat
			}
			if fl.Changed("max-jumps") {
				cfg.Playback.MaxJumps = maxJumps
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			doc, err := r.app.Open(args[0])
			if err != nil {
				return err
			}
			if doc.Err != nil {
				return doc.Err
			}

			var (
				injector playback.Injector
				extra    []playback.Option
				rec      *playback.Capture
			)
			switch {
			case capture != "":
				rec = playback.NewCapture()
				injector = rec
				extra = append(extra, playback.WithSleep(rec.Sleep))
			default:
				injector = playback.NewDryRun(cmd.OutOrStdout())
				if noWait {
					extra = append(extra, playback.WithSleep(func(ctx context.Context, _ time.Duration) error {
						return ctx.Err()
					}))
				}
			}

			player, err := r.app.Player(injector, extra...)
			if err != nil {
				return err
			}
			stats, err := player.Play(cmd.Context(), doc.Steps.Steps())
			if err != nil {
				return err
			}

			if rec != nil {
				if err := macrofile.AppendLogFile(capture, rec.Events()); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s, %s, %s followed, %v waited\n",
				plural(stats.Steps, "step"), plural(stats.Passes, "pass"), plural(stats.Jumps, "jump"), stats.Waited)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&mode, "mode", "", "once, repeat or loop (default from config)")
	fl.IntVarP(&repeat, "repeat", "n", 0, "passes in repeat mode (default from config)")
	fl.IntVar(&maxJumps, "max-jumps", 0, "gotos followed before playback gives up (default from config)")
	fl.StringVar(&capture, "capture", "", "append the replayed actions to this .jsonl log instead of printing them")
	fl.BoolVar(&noWait, "no-wait", false, "skip delays when printing")
	return cmd
}

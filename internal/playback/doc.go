// Package playback replays step timelines.
//
// A Player walks a timeline in order, waiting out delays and following
// Gotos, and hands every input action to an Injector. Injecting into the
// operating system is left to the host; DryRun prints the actions and
// Capture records them as raw events, which makes a replay observable by
// the consolidator.
//
// Basic usage:
//
//	p := playback.NewPlayer(playback.NewDryRun(os.Stdout),
//		playback.WithMode(playback.ModeRepeat, 3))
//	stats, err := p.Play(ctx, steps)
package playback

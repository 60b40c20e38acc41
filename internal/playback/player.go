package playback

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// Mode selects how often a timeline is played.
type Mode int

const (
	// ModeOnce plays the timeline once.
	ModeOnce Mode = iota
	// ModeRepeat plays the timeline a fixed number of times.
	ModeRepeat
	// ModeLoop plays the timeline until cancelled.
	ModeLoop
)

func (m Mode) String() string {
	switch m {
	case ModeRepeat:
		return "repeat"
	case ModeLoop:
		return "loop"
	default:
		return "once"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "once":
		return ModeOnce, nil
	case "repeat":
		return ModeRepeat, nil
	case "loop", "toggle":
		return ModeLoop, nil
	default:
		return ModeOnce, fmt.Errorf("unknown playback mode %q", s)
	}
}

// Injector performs the input a timeline describes.
type Injector interface {
	Key(code keys.Code, down bool) error
	Move(p step.Point) error
	Button(id string, down bool, at step.Point) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Player) {
		p.logger = logging.OrNull(l).WithComponent("playback")
	}
}

// WithMode sets the playback mode. count is the number of passes for
// ModeRepeat (minimum 1).
func WithMode(m Mode, count int) Option {
	return func(p *Player) {
		p.mode = m
		p.count = max(count, 1)
	}
}

// WithMaxJumps bounds the number of Gotos followed in one Play call. Zero
// means no bound.
func WithMaxJumps(n int) Option {
	return func(p *Player) {
		p.maxJumps = n
	}
}

// WithSleep replaces the delay implementation.
func WithSleep(fn SleepFunc) Option {
	return func(p *Player) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// WithRand sets the source for random delays.
func WithRand(r *rand.Rand) Option {
	return func(p *Player) {
		if r != nil {
			p.rng = r
		}
	}
}

// Stats summarizes one Play call.
type Stats struct {
	Steps  int           // steps executed
	Passes int           // completed passes over the timeline
	Jumps  int           // Gotos followed
	Waited time.Duration // total delay requested
}

// Player replays step timelines through an Injector.
type Player struct {
	injector Injector
	logger   *logging.Logger
	mode     Mode
	count    int
	maxJumps int
	sleep    SleepFunc
	rng      *rand.Rand

	mu      sync.Mutex
	playing atomic.Bool
	cancel  context.CancelFunc
}

// NewPlayer creates a player that sends input to injector.
func NewPlayer(injector Injector, opts ...Option) *Player {
	p := &Player{
		injector: injector,
		logger:   logging.Null,
		count:    1,
		sleep:    sleepContext,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Play replays steps synchronously.
//
// Delays wait their duration; random delays wait a uniformly chosen time
// in their range. A Goto continues at its target line. A Goto outside the
// timeline stops playback with a *GotoError. Steps that name unknown keys
// or buttons, and unmodelled steps, are skipped. Play returns ctx.Err()
// when cancelled, including through Cancel.
func (p *Player) Play(ctx context.Context, steps []step.Step) (Stats, error) {
	if len(steps) == 0 {
		return Stats{}, ErrEmpty
	}

	childCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.playing.Load() {
		p.mu.Unlock()
		cancel()
		return Stats{}, ErrAlreadyPlaying
	}
	p.cancel = cancel
	p.playing.Store(true)
	p.mu.Unlock()

	defer func() {
		cancel()
		p.playing.Store(false)
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
	}()

	var stats Stats
	for pass := 0; p.mode == ModeLoop || pass < p.passes(); pass++ {
		if err := p.playPass(childCtx, steps, &stats); err != nil {
			p.logger.Info("playback stopped after %d steps: %v", stats.Steps, err)
			return stats, err
		}
		stats.Passes++
	}
	p.logger.Info("played %d steps in %d passes", stats.Steps, stats.Passes)
	return stats, nil
}

// PlayAsync replays steps in a goroutine. The result is sent on done, which
// may be nil. Setup errors are returned immediately.
func (p *Player) PlayAsync(ctx context.Context, steps []step.Step, done chan<- error) error {
	if len(steps) == 0 {
		return ErrEmpty
	}
	if p.playing.Load() {
		return ErrAlreadyPlaying
	}
	go func() {
		_, err := p.Play(ctx, steps)
		if done != nil {
			done <- err
		}
	}()
	return nil
}

// IsPlaying reports whether a timeline is being played.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Cancel stops the current playback. Safe to call when idle.
func (p *Player) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Player) passes() int {
	if p.mode == ModeRepeat {
		return p.count
	}
	return 1
}

func (p *Player) playPass(ctx context.Context, steps []step.Step, stats *Stats) error {
	var cursor step.Point

	for i := 0; i < len(steps); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s := steps[i]
		next := i + 1
		stats.Steps++

		switch {
		case s.Kind == step.KindDelay:
			d := time.Duration(p.delay(s.Delay)) * time.Millisecond
			stats.Waited += d
			if err := p.sleep(ctx, d); err != nil {
				return err
			}

		case s.Kind.IsKey():
			code, ok := keys.Lookup(s.Key)
			if !ok {
				p.logger.Warn("step %d: skipping unknown key %q", s.Seq, s.Key)
				break
			}
			if err := p.injector.Key(code, s.Kind == step.KindKeyPress); err != nil {
				return &InjectError{Seq: s.Seq, Err: err}
			}

		case s.Kind.IsButton():
			id, ok := keys.ButtonID(s.Button.Name)
			if !ok {
				p.logger.Warn("step %d: skipping unknown button %q", s.Seq, s.Button.Name)
				break
			}
			at := cursor
			if s.Button.HasAt {
				at = s.Button.At
			}
			if err := p.injector.Button(id, s.Kind == step.KindMouseClick, at); err != nil {
				return &InjectError{Seq: s.Seq, Err: err}
			}

		case s.Kind == step.KindMouseMove:
			cursor = s.Point
			if err := p.injector.Move(s.Point); err != nil {
				return &InjectError{Seq: s.Seq, Err: err}
			}

		case s.Kind == step.KindGoto:
			if s.Line < 1 || s.Line > len(steps) {
				return &GotoError{Seq: s.Seq, Line: s.Line, Len: len(steps)}
			}
			stats.Jumps++
			if p.maxJumps > 0 && stats.Jumps > p.maxJumps {
				return fmt.Errorf("%w: %d", ErrJumpLimit, p.maxJumps)
			}
			p.logger.Debug("step %d: jumping to line %d", s.Seq, s.Line)
			next = s.Line - 1

		default:
			p.logger.Debug("step %d: nothing to replay for %q", s.Seq, s.Description)
		}

		i = next
	}
	return nil
}

// delay picks the milliseconds to wait for d.
func (p *Player) delay(d step.Delay) uint32 {
	if !d.Random || d.Max <= d.Min {
		return d.Min
	}
	return d.Min + uint32(p.rng.Int64N(int64(d.Max-d.Min)+1))
}

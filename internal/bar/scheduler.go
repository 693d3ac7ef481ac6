package bar

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler owns the ordered module sequence and the renderer pipes. All
// module state is mutated from the single Run goroutine; the only
// suspension point is the block step, which multiplexes every registered
// source against the computed timeout.
type Scheduler struct {
	states   []*State
	renderer Renderer
	logger   *zap.Logger

	runID   string
	maxIdle time.Duration
	control *Source

	wake chan struct{}
	now  func() time.Time

	iteration   uint64
	interrupted bool
	lastLoop    time.Duration

	snapshot atomic.Pointer[Snapshot]
}

// Option customizes a Scheduler at construction.
type Option func(*Scheduler)

// WithMaxIdle caps the blocking timeout used when no module has a finite
// wait time.
func WithMaxIdle(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxIdle = d
		}
	}
}

// WithControl attaches an injection source for control-plane lines:
// "invalidate <name|*>" commands and synthetic renderer events.
func WithControl(src *Source) Option {
	return func(s *Scheduler) { s.control = src }
}

// WithClock overrides the scheduler's time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New assembles a scheduler over the given renderer and ordered module
// states. The order is fixed for the life of the run and defines both
// frame concatenation order and event dispatch order.
func New(renderer Renderer, states []*State, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if len(states) == 0 {
		return nil, ErrNoModules
	}
	s := &Scheduler{
		states:   states,
		renderer: renderer,
		logger:   logger,
		runID:    uuid.NewString(),
		maxIdle:  DefaultWaitTime,
		wake:     make(chan struct{}, 1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("run_id", s.runID))
	return s, nil
}

// RunID identifies this scheduler run in logs and status snapshots.
func (s *Scheduler) RunID() string { return s.runID }

// Run drives the loop until ctx is cancelled or a failure propagates.
// There is no retry anywhere: producer failures and renderer I/O failures
// terminate the loop and surface to the caller. The renderer is closed on
// every exit path.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.renderer.Close()

	for _, src := range s.sources() {
		src.notify(s.wake)
	}

	s.logger.Info("scheduler loop started", zap.Int("modules", len(s.states)))

	for {
		start := s.now()

		wait := computeWait(s.states, s.lastLoop, s.interrupted, s.maxIdle, start)
		s.logger.Debug("blocking", zap.Duration("wait", wait))

		interrupted, err := s.block(ctx, wait)
		if err != nil {
			return err
		}
		s.interrupted = interrupted

		if err := s.dispatchUpdates(); err != nil {
			return err
		}
		if err := s.dispatchEvent(); err != nil {
			return err
		}

		// The loop duration includes the block itself; the wait
		// calculator subtracts it after an interrupted iteration to
		// keep timed modules on cadence.
		s.lastLoop = s.now().Sub(start)
		s.iteration++
		s.publish()
	}
}

func (s *Scheduler) sources() []*Source {
	srcs := make([]*Source, 0, len(s.states)+2)
	for _, st := range s.states {
		if st.Source != nil {
			srcs = append(srcs, st.Source)
		}
	}
	if ev := s.renderer.Events(); ev != nil {
		srcs = append(srcs, ev)
	}
	if s.control != nil {
		srcs = append(srcs, s.control)
	}
	return srcs
}

func (s *Scheduler) anyReady() bool {
	for _, src := range s.sources() {
		if src.Ready() {
			return true
		}
	}
	return false
}

// block waits until a source is ready or the timeout elapses. A source
// that is already ready makes it return at once. With no sources this
// degrades to a plain timed sleep. It reports whether any readable was
// ready, which marks the iteration as interrupted.
func (s *Scheduler) block(ctx context.Context, wait time.Duration) (bool, error) {
	if s.anyReady() {
		// Consume a stale wake token so it cannot trigger a spurious
		// early return later.
		select {
		case <-s.wake:
		default:
		}
		return true, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-s.wake:
		return true, nil
	case <-timer.C:
		return s.anyReady(), nil
	}
}

// dispatchUpdates recomputes every due module and writes the composed
// frame. A module whose source is ready always recomputes; a time-driven
// module recomputes when invalidated or its interval elapsed; everything
// else contributes its cached value, so no module ever drops out of the
// frame. The frame goes to the renderer in one atomic write.
func (s *Scheduler) dispatchUpdates() error {
	now := s.now()
	var frame bytes.Buffer

	for _, st := range s.states {
		value := st.cache
		switch {
		case st.Source != nil && st.Source.Ready():
			out, err := st.Module.Output()
			if err != nil {
				return fmt.Errorf("module %s: %w", st.Name, err)
			}
			value = out
			st.lastUpdate = now
			s.logger.Debug("updated readable module", zap.String("module", st.Name))
		case st.due(now):
			out, err := st.Module.Output()
			if err != nil {
				return fmt.Errorf("module %s: %w", st.Name, err)
			}
			value = out
			st.lastUpdate = now
			s.logger.Debug("updated timed module", zap.String("module", st.Name))
		default:
			s.logger.Debug("using cached value", zap.String("module", st.Name))
		}
		st.cache = value
		frame.WriteString(value)
	}

	frame.WriteByte('\n')
	return s.renderer.WriteFrame(frame.Bytes())
}

// dispatchEvent consumes at most one buffered line per iteration: renderer
// events take precedence over injected control lines. Lines left buffered
// keep their source ready, so later iterations drain them one at a time.
func (s *Scheduler) dispatchEvent() error {
	if ev := s.renderer.Events(); ev != nil && ev.Ready() {
		line, ok := ev.TryNext()
		if !ok {
			return fmt.Errorf("%w: %v", ErrEventStream, ev.Err())
		}
		return s.broadcast(line)
	}

	if s.control != nil && s.control.Ready() {
		line, ok := s.control.TryNext()
		if !ok {
			if err := s.control.Err(); err != nil {
				s.logger.Warn("control stream closed", zap.Error(err))
			}
			return nil
		}
		return s.dispatchControl(line)
	}
	return nil
}

// broadcast delivers one event to every module in sequence order,
// unconditionally; modules self-filter. A module asking for invalidation
// gets its state zeroed so the next iteration recomputes it immediately.
func (s *Scheduler) broadcast(event string) error {
	s.logger.Info("dispatching event", zap.String("event", event))
	for _, st := range s.states {
		invalidate, err := st.Module.HandleEvent(event)
		if err != nil {
			return fmt.Errorf("module %s handling %q: %w", st.Name, event, err)
		}
		if invalidate {
			st.Invalidate()
		}
	}
	return nil
}

// dispatchControl interprets an injected control line. "invalidate <name>"
// (or "invalidate *") is handled by the scheduler itself, keeping all
// state mutation on this goroutine; anything else is broadcast exactly
// like a renderer event.
func (s *Scheduler) dispatchControl(line string) error {
	if target, ok := strings.CutPrefix(line, "invalidate "); ok {
		for _, st := range s.states {
			if target == "*" || st.Name == target {
				st.Invalidate()
			}
		}
		s.logger.Info("invalidated via control", zap.String("target", target))
		return nil
	}
	return s.broadcast(line)
}

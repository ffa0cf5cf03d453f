package loop

import (
	"context"
	"errors"
	"fmt"
)

// FrameSink consumes the frames produced by Run. Returning an error stops
// the loop.
type FrameSink interface {
	Frame(ctx context.Context, f Frame) error
}

// SinkFunc adapts a function to FrameSink.
type SinkFunc func(ctx context.Context, f Frame) error

func (fn SinkFunc) Frame(ctx context.Context, f Frame) error { return fn(ctx, f) }

// Run initialises s and then processes one callback per clock tick until
// ctx is cancelled, the clock stops or the sink fails. A stopped clock ends
// the run cleanly.
func Run(ctx context.Context, s *Session, clock Clock, sink FrameSink) error {
	if err := s.Init(); err != nil {
		return err
	}
	for {
		now, err := clock.Wait(ctx)
		if errors.Is(err, ErrClockStopped) {
			return nil
		}
		if err != nil {
			return err
		}
		f, err := s.Tick(ctx, now)
		if err != nil {
			return fmt.Errorf("tick %d: %w", s.state.Steps, err)
		}
		if sink == nil {
			continue
		}
		if err := sink.Frame(ctx, f); err != nil {
			return fmt.Errorf("frame sink: %w", err)
		}
	}
}

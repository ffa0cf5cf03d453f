package loop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClockStopped is returned by a clock that has no more callbacks.
var ErrClockStopped = errors.New("clock stopped")

// Clock paces display callbacks. Wait blocks until the next callback is due
// and returns its timestamp.
type Clock interface {
	Wait(ctx context.Context) (time.Time, error)
}

// TickerClock fires at a fixed refresh rate from the wall clock.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock returns a clock firing hz times per second.
func NewTickerClock(hz float64) *TickerClock {
	if !(hz > 0) {
		hz = 60
	}
	return &TickerClock{ticker: time.NewTicker(time.Duration(float64(time.Second) / hz))}
}

func (c *TickerClock) Wait(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-c.ticker.C:
		return t, nil
	}
}

// Stop releases the ticker.
func (c *TickerClock) Stop() { c.ticker.Stop() }

// ManualClock replays scripted timestamps. It never blocks.
type ManualClock struct {
	mu    sync.Mutex
	times []time.Time
	next  int
}

// NewManualClock returns a clock that yields times in order.
func NewManualClock(times ...time.Time) *ManualClock {
	return &ManualClock{times: times}
}

// NewManualClockFromDeltas starts at start and yields one timestamp per
// delta, the first being start itself.
func NewManualClockFromDeltas(start time.Time, deltas []time.Duration) *ManualClock {
	times := make([]time.Time, 0, len(deltas)+1)
	t := start
	times = append(times, t)
	for _, d := range deltas {
		t = t.Add(d)
		times = append(times, t)
	}
	return NewManualClock(times...)
}

// Push appends more timestamps.
func (c *ManualClock) Push(ts ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.times = append(c.times, ts...)
}

// Remaining reports how many timestamps have not been consumed.
func (c *ManualClock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.times) - c.next
}

func (c *ManualClock) Wait(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.times) {
		return time.Time{}, ErrClockStopped
	}
	t := c.times[c.next]
	c.next++
	return t, nil
}

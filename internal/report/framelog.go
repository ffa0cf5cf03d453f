// Package report records what a viewer session did frame by frame and
// drives sessions headlessly for regression reports.
package report

import (
	"fmt"
	"io"
	"strings"
)

// Kind classifies a frame event.
type Kind int

const (
	// KindFrame is the per-frame stepping line, kept only in verbose logs.
	KindFrame Kind = iota
	// KindClamped marks a callback whose elapsed time hit the catch-up clamp.
	KindClamped
	// KindDiscontinuity marks an entity that jumped more than jumpThreshold
	// meters between two frames, e.g. a pursuit reset.
	KindDiscontinuity
	// KindDrawError marks a frame where at least one view failed to draw.
	KindDrawError
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindClamped:
		return "clamped"
	case KindDiscontinuity:
		return "discontinuity"
	case KindDrawError:
		return "draw-error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NoEntity tags events that concern the whole session.
const NoEntity = -1

// Event is one recorded occurrence.
type Event struct {
	Frame  int
	Kind   Kind
	Entity int     // entity index or NoEntity
	Value  float64 // seconds for loop events, meters for discontinuities
	Detail string
}

func (e Event) String() string {
	ent := "--"
	if e.Entity != NoEntity {
		ent = fmt.Sprintf("E%d", e.Entity)
	}
	return fmt.Sprintf("%6d  %-13s %-3s %s", e.Frame, e.Kind, ent, e.Detail)
}

// FrameLog collects events during a headless run in frame order.
// KindFrame events are dropped unless the log is verbose.
type FrameLog struct {
	events  []Event
	verbose bool
}

func NewFrameLog(verbose bool) *FrameLog {
	return &FrameLog{verbose: verbose}
}

// Record appends e.
func (fl *FrameLog) Record(e Event) {
	if e.Kind == KindFrame && !fl.verbose {
		return
	}
	fl.events = append(fl.events, e)
}

func (fl *FrameLog) Events() []Event { return fl.events }

// Of returns the events of kind k.
func (fl *FrameLog) Of(k Kind) []Event {
	var out []Event
	for _, e := range fl.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func (fl *FrameLog) Count(k Kind) int {
	n := 0
	for _, e := range fl.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// First returns the earliest event of kind k.
func (fl *FrameLog) First(k Kind) (Event, bool) {
	for _, e := range fl.events {
		if e.Kind == k {
			return e, true
		}
	}
	return Event{}, false
}

// Last returns the latest event of kind k.
func (fl *FrameLog) Last(k Kind) (Event, bool) {
	for i := len(fl.events) - 1; i >= 0; i-- {
		if fl.events[i].Kind == k {
			return fl.events[i], true
		}
	}
	return Event{}, false
}

// Around returns the events within radius frames of frame, inclusive.
func (fl *FrameLog) Around(frame, radius int) []Event {
	var out []Event
	for _, e := range fl.events {
		if e.Frame >= frame-radius && e.Frame <= frame+radius {
			out = append(out, e)
		}
	}
	return out
}

// WriteEvents writes one line per event.
func WriteEvents(w io.Writer, events []Event) error {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 300
	logMaxEntries = 40
	logLineHeight = 14
	logVisible    = 6
)

// Event is one line in the on-screen event log.
type Event struct {
	Step    uint64
	Kind    string // init, scene, copy, error
	Message string
}

// EventLog is a fixed-size ring of session events shown in the corner of
// the main view.
type EventLog struct {
	entries [logMaxEntries]Event
	head    int
	count   int
}

// Add appends an entry, overwriting the oldest when full.
func (el *EventLog) Add(step uint64, kind, msg string) {
	el.entries[el.head] = Event{Step: step, Kind: kind, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []Event {
	result := make([]Event, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

var eventKindColors = map[string]color.RGBA{
	"init":  {R: 90, G: 200, B: 120, A: 255},
	"scene": {R: 100, G: 170, B: 240, A: 255},
	"copy":  {R: 230, G: 200, B: 80, A: 255},
	"error": {R: 230, G: 80, B: 70, A: 255},
}

// Draw renders the newest entries bottom-left, in logical pixels scaled by ds.
func (el *EventLog) Draw(screen *ebiten.Image, t *textDrawer, h, ds float64) {
	entries := el.Recent()
	if len(entries) > logVisible {
		entries = entries[len(entries)-logVisible:]
	}
	if len(entries) == 0 {
		return
	}
	top := h - float64(len(entries)*logLineHeight) - 10
	vector.FillRect(screen, float32(4*ds), float32((top-4)*ds), float32(logPanelWidth*ds),
		float32((float64(len(entries)*logLineHeight)+8)*ds), color.RGBA{R: 10, G: 12, B: 10, A: 200}, false)

	y := top
	for _, e := range entries {
		dot, ok := eventKindColors[e.Kind]
		if !ok {
			dot = color.RGBA{R: 160, G: 160, B: 160, A: 255}
		}
		vector.FillRect(screen, float32(8*ds), float32((y+4)*ds), float32(3*ds), float32(5*ds), dot, false)
		t.draw(screen, fmt.Sprintf("%6d %s", e.Step, e.Message), 14, y, hudText)
		y += logLineHeight
	}
}

package dispatch

import (
	"time"

	"github.com/sirrobot01/dockdeck/pkg/classify"
)

// Event describes one finished command
type Event struct {
	Command  string
	Target   string
	Started  time.Time
	Duration time.Duration
	Items    int // items delivered by a stream command
	Err      error
}

// Outcome is a short label for the result: "ok", "invalid", "unexpected",
// "canceled", or the classified daemon kind.
func (e Event) Outcome() string {
	if e.Err == nil {
		return "ok"
	}
	if kind, ok := classify.KindOf(e.Err); ok {
		return kind.String()
	}
	if classify.IsUnexpected(e.Err) {
		return "unexpected"
	}
	if classify.IsValidation(e.Err) {
		return "invalid"
	}
	return "canceled"
}

// Recorder observes finished commands. Record must not block for long; it
// runs on the command's goroutine.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(Event)

func (f RecorderFunc) Record(e Event) {
	f(e)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// eventStream writes server-sent events. Headers are sent with the first
// event so that a command failing before any output still gets a plain
// JSON error response with a proper status.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	f, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: f}
}

// send writes one event with a JSON-encoded data line
func (s *eventStream) send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if !s.started {
		if s.flusher == nil {
			return errors.New("streaming unsupported by response writer")
		}
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// finish reports the outcome of the command that fed the stream. An error
// before the first event becomes a JSON response, a later one an error
// event. A completed stream ends with a done event.
func (s *eventStream) finish(r *http.Request, err error) {
	if r.Context().Err() != nil {
		log.Debug().Str("path", r.URL.Path).Msg("Stream client disconnected")
		return
	}

	switch {
	case err == nil:
		s.send("done", map[string]string{"status": "complete"})
	case !s.started:
		commandError(s.w, err)
	default:
		_, body := describe(err)
		s.send("error", body)
	}
}

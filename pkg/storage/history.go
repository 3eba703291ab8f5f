package storage

import (
	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/dispatch"
)

// HistoryRecorder persists every finished command as a CommandRecord
type HistoryRecorder struct {
	store Storage
}

// NewHistoryRecorder creates a dispatch.Recorder backed by store
func NewHistoryRecorder(store Storage) *HistoryRecorder {
	return &HistoryRecorder{store: store}
}

// Record implements dispatch.Recorder. A failed write is logged and dropped
// so that history never changes a command's result.
func (h *HistoryRecorder) Record(ev dispatch.Event) {
	rec := &CommandRecord{
		Command:   ev.Command,
		Target:    ev.Target,
		Outcome:   ev.Outcome(),
		Items:     ev.Items,
		StartedAt: ev.Started,
		Duration:  ev.Duration,
	}
	if ev.Err != nil {
		rec.Message = ev.Err.Error()
	}
	if err := h.store.CreateCommandRecord(rec); err != nil {
		log.Error().Err(err).Str("command", ev.Command).Msg("Failed to record command history")
	}
}

package storage

import (
	"errors"
	"time"
)

// CommandRecord is one finished dispatcher command
type CommandRecord struct {
	ID        string        `json:"id" msgpack:"id"`
	Command   string        `json:"command" msgpack:"command"`
	Target    string        `json:"target,omitempty" msgpack:"target"`
	Outcome   string        `json:"outcome" msgpack:"outcome"` // "ok" or the error kind
	Message   string        `json:"message,omitempty" msgpack:"message"`
	Items     int           `json:"items,omitempty" msgpack:"items"` // stream commands only
	StartedAt time.Time     `json:"startedAt" msgpack:"started_at"`
	Duration  time.Duration `json:"duration" msgpack:"duration"`
}

// ErrNotFound is returned when a command record does not exist
var ErrNotFound = errors.New("command record not found")

// Storage defines the interface for command history persistence
type Storage interface {
	Close() error

	CreateCommandRecord(rec *CommandRecord) error
	GetCommandRecord(id string) (*CommandRecord, error)
	// ListCommandRecords returns up to limit records, newest first.
	// A limit of zero or less returns every record.
	ListCommandRecords(limit int) []*CommandRecord
	// DeleteCommandRecordsBefore removes records started before cutoff and
	// returns how many were removed.
	DeleteCommandRecordsBefore(cutoff time.Time) (int, error)
}

// New creates a new storage instance based on type
func New(path string) (Storage, error) {
	return NewBoltStorage(path)
}

package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var commandsBucket = []byte("commands")

// BoltStorage implements Storage interface using BoltDB
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage creates a new BoltDB-backed storage
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(commandsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

// Close closes the database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// CreateCommandRecord stores a record. An empty ID is filled with a
// time-ordered UUID so that key order follows insertion order.
func (s *BoltStorage) CreateCommandRecord(rec *CommandRecord) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate record id: %w", err)
		}
		rec.ID = id.String()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(commandsBucket)
		data, err := msgpack.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.ID), data)
	})
}

// GetCommandRecord retrieves a record by ID
func (s *BoltStorage) GetCommandRecord(id string) (*CommandRecord, error) {
	var rec CommandRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(commandsBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return msgpack.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCommandRecords walks the bucket backwards from the newest key
func (s *BoltStorage) ListCommandRecords(limit int) []*CommandRecord {
	var records []*CommandRecord
	s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(commandsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec CommandRecord
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, &rec)
		}
		return nil
	})
	return records
}

// DeleteCommandRecordsBefore removes every record started before cutoff
func (s *BoltStorage) DeleteCommandRecordsBefore(cutoff time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(commandsBucket)

		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec CommandRecord
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return nil
			}
			if rec.StartedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune command records: %w", err)
	}
	return removed, nil
}

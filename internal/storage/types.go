package storage

import (
	"errors"
	"time"
)

var (
	// ErrPersistence wraps every failure to write the history record.
	ErrPersistence = errors.New("persistence error")

	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Config configures storage.
//
// Driver values:
//   - "file" (default): JSON history file at Path
//   - "sqlite": SQLite database file at Path
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

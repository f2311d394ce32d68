package storage

import (
	"context"
	"fmt"
	"strings"

	"pagewatch/internal/watch"
	logx "pagewatch/pkg/logx"
)

// Store is the history persistence API used by the tracker.
type Store interface {
	Load(ctx context.Context) watch.HistoryRecord
	Save(ctx context.Context, rec watch.HistoryRecord) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

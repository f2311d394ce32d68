package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"pagewatch/internal/watch"
	logx "pagewatch/pkg/logx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history (
	keyword TEXT    NOT NULL,
	seq     INTEGER NOT NULL,
	context TEXT    NOT NULL,
	PRIMARY KEY (keyword, seq)
);`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) watch.HistoryRecord {
	rec := watch.HistoryRecord{}
	rows, err := s.db.QueryContext(ctx, `SELECT keyword, context FROM history ORDER BY keyword, seq`)
	if err != nil {
		s.log.Warn("history unreadable; starting empty", logx.Err(err))
		return rec
	}
	defer rows.Close()

	for rows.Next() {
		var k, c string
		if err := rows.Scan(&k, &c); err != nil {
			s.log.Warn("history corrupt; starting empty", logx.Err(err))
			return watch.HistoryRecord{}
		}
		rec[k] = append(rec[k], c)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("history unreadable; starting empty", logx.Err(err))
		return watch.HistoryRecord{}
	}
	return rec
}

// Save replaces the whole record inside one transaction.
func (s *sqliteStore) Save(ctx context.Context, rec watch.HistoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return persistErr("clear history", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history(keyword, seq, context) VALUES(?,?,?)`)
	if err != nil {
		return persistErr("prepare insert", err)
	}
	defer stmt.Close()

	for k, ctxs := range rec {
		for i, c := range ctxs {
			if _, err := stmt.ExecContext(ctx, k, i, c); err != nil {
				return persistErr("insert history", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return persistErr("commit", err)
	}
	s.log.Debug("history saved", logx.Int("keywords", len(rec)))
	return nil
}

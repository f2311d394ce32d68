package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pagewatch/internal/watch"
	logx "pagewatch/pkg/logx"
)

// fileStore keeps the history as one JSON object in a single file.
type fileStore struct {
	log  logx.Logger
	path string

	mu sync.Mutex
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Close() error { return nil }

// Load reads the record from disk. The read is local and short, so it is not
// cut short by ctx.
func (s *fileStore) Load(context.Context) watch.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("history unreadable; starting empty", logx.String("path", s.path), logx.Err(err))
		}
		return watch.HistoryRecord{}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return watch.HistoryRecord{}
	}

	var rec watch.HistoryRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		s.log.Warn("history corrupt; starting empty", logx.String("path", s.path), logx.Err(err))
		return watch.HistoryRecord{}
	}
	if rec == nil {
		rec = watch.HistoryRecord{}
	}
	return rec
}

// Save replaces the history file atomically: the record is written to a temp
// file in the same directory, synced, then renamed over the target.
func (s *fileStore) Save(ctx context.Context, rec watch.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return persistErr("save", err)
	}
	if rec == nil {
		rec = watch.HistoryRecord{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return persistErr("marshal history", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return persistErr("create temp file", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return persistErr("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return persistErr("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return persistErr("close temp file", err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return persistErr("rename history file", err)
	}
	if err := syncDir(dir); err != nil {
		s.log.Debug("history dir sync failed", logx.String("dir", dir), logx.Err(err))
	}

	s.log.Debug("history saved", logx.String("path", s.path), logx.Int("keywords", len(rec)))
	return nil
}

// syncDir best-effort fsyncs the parent directory to persist the rename.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

package watch

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"pagewatch/internal/render"
	kit "pagewatch/internal/transport"
	logx "pagewatch/pkg/logx"
)

// Source yields the text of the watched page region.
type Source interface {
	Render(ctx context.Context) render.Result
}

// Store persists the match history between runs.
type Store interface {
	// Load never fails: a missing or unreadable record is an empty one.
	Load(ctx context.Context) HistoryRecord
	Save(ctx context.Context, rec HistoryRecord) error
}

// Settings is the per-run configuration of a Tracker.
type Settings struct {
	SourceLabel   string
	Keywords      []string
	ContextRadius int
	SnippetLimit  int
	SnippetWidth  int
	MessageCap    int

	Target kit.ChatTarget
}

// Report summarises one run.
type Report struct {
	Extracted   bool
	Matches     int
	NewKeywords int
	NewContexts int
	Notified    bool
	Saved       bool
	Took        time.Duration
}

// Tracker runs render → match → diff → notify → save.
//
// Runs are serialised; Apply may be called concurrently with Run and takes
// effect on the next run.
type Tracker struct {
	runMu sync.Mutex

	mu       sync.RWMutex
	settings Settings

	src    Source
	store  Store
	sender kit.Sender
	log    logx.Logger
}

// NewTracker wires a tracker. sender may be nil when messaging credentials
// are not configured; notifications are then skipped with a warning.
func NewTracker(s Settings, src Source, store Store, sender kit.Sender, log logx.Logger) *Tracker {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Tracker{settings: s, src: src, store: store, sender: sender, log: log}
}

func (t *Tracker) Apply(s Settings) {
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
}

func (t *Tracker) Settings() Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// Run executes one watch cycle. Only persistence failures are returned;
// extraction and delivery problems are logged and absorbed.
func (t *Tracker) Run(ctx context.Context) (Report, error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	start := time.Now()
	s := t.Settings()
	var rep Report

	res := t.src.Render(ctx)
	text := res.Text
	if !res.OK() {
		t.log.Warn("extraction unavailable; treating as empty", logx.String("reason", res.Unavailable))
		text = ""
	} else {
		rep.Extracted = true
	}

	current := FindMatches(text, s.Keywords, s.ContextRadius)
	rep.Matches = current.Count()
	if t.log.Enabled(logx.LevelDebug) {
		for _, kw := range slices.Sorted(maps.Keys(current)) {
			t.log.Debug("keyword matched", logx.String("keyword", kw), logx.Strings("contexts", current[kw]))
		}
	}

	previous := t.store.Load(ctx)
	d := Diff(current, previous)
	rep.NewKeywords = len(d.NewKeywords)
	rep.NewContexts = d.ContextCount()

	if d.Empty() {
		t.log.Info("no new matches",
			logx.Int("matches", rep.Matches),
			logx.Int("known_keywords", len(previous)),
		)
		rep.Took = time.Since(start)
		return rep, nil
	}

	t.log.Info("new matches found",
		logx.Strings("new_keywords", d.NewKeywords),
		logx.Int("new_contexts", rep.NewContexts),
	)

	// Notify first so a storage failure never swallows an alert.
	if msg, ok := Compose(d, ComposeOptions{
		SourceLabel:  s.SourceLabel,
		Keywords:     s.Keywords,
		SnippetLimit: s.SnippetLimit,
		SnippetWidth: s.SnippetWidth,
		MessageCap:   s.MessageCap,
	}); ok {
		rep.Notified = t.notify(ctx, s.Target, msg)
	}

	if err := t.store.Save(ctx, Merge(previous, current)); err != nil {
		t.log.Error("history save failed", logx.Err(err))
		rep.Took = time.Since(start)
		return rep, fmt.Errorf("save history: %w", err)
	}
	rep.Saved = true
	rep.Took = time.Since(start)
	return rep, nil
}

func (t *Tracker) notify(ctx context.Context, to kit.ChatTarget, msg string) bool {
	if t.sender == nil || to.ChatID == 0 {
		t.log.Warn("messaging credentials missing; notification skipped")
		return false
	}
	if _, err := t.sender.SendText(ctx, to, msg, &kit.SendOptions{DisablePreview: true}); err != nil {
		t.log.Warn("notification failed", logx.Err(err), logx.Int64("chat_id", to.ChatID))
		return false
	}
	t.log.Info("notification sent", logx.Int64("chat_id", to.ChatID))
	return true
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultKeywords        = "available,in stock"
	DefaultConsentSelector = "button#age-consent-accept"
	DefaultContentSelector = "body"
	DefaultSchedule        = "15m"
	DefaultStoragePath     = "./state/history.json"

	DefaultContextRadius = 40
	DefaultSnippetLimit  = 3
	DefaultSnippetWidth  = 120
	DefaultMessageCap    = 4000

	// MinMessageCap keeps room for the header and at least one snippet.
	MinMessageCap = 64
	// MaxMessageCap is Telegram's per-message limit.
	MaxMessageCap = 4096
)

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Console = true
	cfg.Source.ConsentSelector = DefaultConsentSelector
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills omitted fields in place.
func ApplyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Keywords) == "" {
		cfg.Keywords = DefaultKeywords
	}
	if strings.TrimSpace(cfg.Source.ContentSelector) == "" {
		cfg.Source.ContentSelector = DefaultContentSelector
	}
	if cfg.Match.ContextRadius == nil {
		r := DefaultContextRadius
		cfg.Match.ContextRadius = &r
	}
	if cfg.Match.SnippetLimit <= 0 {
		cfg.Match.SnippetLimit = DefaultSnippetLimit
	}
	if cfg.Match.SnippetWidth <= 0 {
		cfg.Match.SnippetWidth = DefaultSnippetWidth
	}
	if cfg.Match.MessageCap <= 0 {
		cfg.Match.MessageCap = DefaultMessageCap
	}
	if strings.TrimSpace(cfg.Schedule.Every) == "" {
		cfg.Schedule.Every = DefaultSchedule
	}
	if strings.TrimSpace(cfg.Storage.Driver) == "" {
		cfg.Storage.Driver = "file"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
}

// Validate rejects configs the watcher cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.Source.URL) == "" {
		return fmt.Errorf("source.url is required")
	}
	if len(ParseKeywords(cfg.Keywords)) == 0 {
		return fmt.Errorf("keywords: at least one keyword is required")
	}
	if cfg.Match.ContextRadius != nil && *cfg.Match.ContextRadius < 0 {
		return fmt.Errorf("match.context_radius must be >= 0")
	}
	if cfg.Match.MessageCap < MinMessageCap || cfg.Match.MessageCap > MaxMessageCap {
		return fmt.Errorf("match.message_cap must be between %d and %d", MinMessageCap, MaxMessageCap)
	}
	if _, err := ParseDurationField("source.timeout", cfg.Source.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.timeout", cfg.Telegram.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
		return err
	}
	if s := strings.TrimSpace(cfg.Telegram.ChatID); s != "" {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return fmt.Errorf("telegram.chat_id: invalid chat id %q", s)
		}
	}
	if tz := strings.TrimSpace(cfg.Schedule.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("schedule.timezone: %w", err)
		}
	}
	return nil
}

// ParseKeywords splits a comma-separated list, trims and lower-cases each
// entry, drops empties and duplicates, and keeps the configured order.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		k := strings.ToLower(strings.TrimSpace(p))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ChatID returns the parsed Telegram chat id and whether both messaging
// credentials are present.
func (c *Config) ChatID() (int64, bool) {
	token := strings.TrimSpace(c.Telegram.Token)
	raw := strings.TrimSpace(c.Telegram.ChatID)
	if token == "" || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ContextRadius returns the configured radius, DefaultContextRadius when unset.
func (c *Config) ContextRadius() int {
	if c.Match.ContextRadius == nil {
		return DefaultContextRadius
	}
	return *c.Match.ContextRadius
}

// SourceLabel returns the label shown in notifications.
func (c *Config) SourceLabel() string {
	if l := strings.TrimSpace(c.Source.Label); l != "" {
		return l
	}
	return strings.TrimSpace(c.Source.URL)
}

// RunOnStart reports whether daemon mode runs a check immediately (default true).
func (c *Config) RunOnStart() bool {
	return c.Schedule.RunOnStart == nil || *c.Schedule.RunOnStart
}

package config

type Config struct {
	Source SourceConfig `json:"source"`

	// Keywords is a comma-separated list, e.g. "available,in stock".
	// Entries are trimmed and lower-cased; order is kept for display.
	Keywords string `json:"keywords"`

	Match    MatchConfig    `json:"match"`
	Telegram TelegramConfig `json:"telegram"`
	Schedule ScheduleConfig `json:"schedule"`
	Storage  StorageConfig  `json:"storage"`
	Logging  LoggingConfig  `json:"logging"`
}

// SourceConfig describes the watched page.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type SourceConfig struct {
	URL string `json:"url"`
	// Label names the source in notifications; defaults to URL.
	Label           string `json:"label,omitempty"`
	ConsentSelector string `json:"consent_selector,omitempty"`
	ContentSelector string `json:"content_selector,omitempty"`

	// Cookies are sent with every page request (e.g. a consent cookie).
	Cookies   map[string]string `json:"cookies,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Timeout   string            `json:"timeout,omitempty"`
}

// MatchConfig holds the tracker's numeric knobs.
//
// Defaults (when fields are omitted/zero):
//   - context_radius: 40 (only when omitted; 0 is a valid radius)
//   - snippet_limit: 3
//   - snippet_width: 120
//   - message_cap: 4000
type MatchConfig struct {
	ContextRadius *int `json:"context_radius,omitempty"`
	SnippetLimit  int  `json:"snippet_limit,omitempty"`
	SnippetWidth  int  `json:"snippet_width,omitempty"`
	MessageCap    int  `json:"message_cap,omitempty"`
}

// TelegramConfig holds messaging credentials. If either token or chat_id is
// empty, notifications are skipped with a warning.
type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   string `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	APIURL   string `json:"api_url,omitempty"`
	// Timeout is a Go duration string (default "10s").
	Timeout string `json:"timeout,omitempty"`
}

// ScheduleConfig controls daemon mode.
//
// Every accepts a cron expression ("*/5 * * * *", "@hourly"), a Go duration
// ("15m") or an HH:MM interval ("01:30").
type ScheduleConfig struct {
	Every      string `json:"every"`
	Timezone   string `json:"timezone,omitempty"`
	RunOnStart *bool  `json:"run_on_start,omitempty"`
}

// StorageConfig controls where the match history lives.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./state/history.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

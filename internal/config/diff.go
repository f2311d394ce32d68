package config

import (
	"reflect"
	"strings"

	logx "pagewatch/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections and safe
// structured attrs for logging (never includes the bot token).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 7)
	attrs := make([]logx.Field, 0, 16)

	if !reflect.DeepEqual(oldCfg.Source, newCfg.Source) {
		changed = append(changed, "source")
		attrs = append(attrs,
			logx.String("source.url", newCfg.Source.URL),
			logx.String("source.content_selector", newCfg.Source.ContentSelector),
			logx.Int("source.cookies", len(newCfg.Source.Cookies)),
		)
	}

	if oldCfg.Keywords != newCfg.Keywords {
		changed = append(changed, "keywords")
		attrs = append(attrs, logx.Strings("keywords", ParseKeywords(newCfg.Keywords)))
	}

	if !reflect.DeepEqual(oldCfg.Match, newCfg.Match) {
		changed = append(changed, "match")
		attrs = append(attrs,
			logx.Int("match.context_radius", newCfg.ContextRadius()),
			logx.Int("match.snippet_limit", newCfg.Match.SnippetLimit),
			logx.Int("match.snippet_width", newCfg.Match.SnippetWidth),
			logx.Int("match.message_cap", newCfg.Match.MessageCap),
		)
	}

	// Telegram (never log token)
	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_set", strings.TrimSpace(newCfg.Telegram.Token) != ""),
			logx.Bool("telegram.chat_id_set", strings.TrimSpace(newCfg.Telegram.ChatID) != ""),
			logx.Int("telegram.thread_id", newCfg.Telegram.ThreadID),
		)
	}

	if !reflect.DeepEqual(oldCfg.Schedule, newCfg.Schedule) {
		changed = append(changed, "schedule")
		attrs = append(attrs,
			logx.String("schedule.every", newCfg.Schedule.Every),
			logx.String("schedule.timezone", newCfg.Schedule.Timezone),
		)
	}

	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", newCfg.Storage.Driver),
			logx.String("storage.path", newCfg.Storage.Path),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logx.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}

	return changed, attrs
}

package config

import "strings"

// Environment variables recognised by ApplyEnv. They win over the file so a
// scheduled job can be configured without one.
const (
	EnvURL             = "CHECK_URL"
	EnvConsentSelector = "CONSENT_SELECTOR"
	EnvContentSelector = "CONTENT_SELECTOR"
	EnvKeywords        = "KEYWORDS"
	EnvBotToken        = "BOT_TOKEN"
	EnvChatID          = "CHAT_ID"
	EnvStateFile       = "STATE_FILE"
)

// ApplyEnv overlays non-empty environment values onto cfg.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvURL, &cfg.Source.URL)
	set(EnvConsentSelector, &cfg.Source.ConsentSelector)
	set(EnvContentSelector, &cfg.Source.ContentSelector)
	set(EnvKeywords, &cfg.Keywords)
	set(EnvBotToken, &cfg.Telegram.Token)
	set(EnvChatID, &cfg.Telegram.ChatID)
	set(EnvStateFile, &cfg.Storage.Path)
}

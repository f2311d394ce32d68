package app

import (
	"strings"
	"time"

	"pagewatch/internal/config"
	"pagewatch/internal/render"
	"pagewatch/internal/storage"
	"pagewatch/internal/task/scheduler"
	kit "pagewatch/internal/transport"
	telegram "pagewatch/internal/transport/telegram/adapter"
	"pagewatch/internal/watch"
	logx "pagewatch/pkg/logx"
)

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)),
		Path:        strings.TrimSpace(cfg.Storage.Path),
		BusyTimeout: busy,
	}, nil
}

func mapRenderConfig(cfg *config.Config) (render.Config, error) {
	timeout, err := config.ParseDurationOrDefault("source.timeout", cfg.Source.Timeout, 30*time.Second)
	if err != nil {
		return render.Config{}, err
	}
	return render.Config{
		URL:             strings.TrimSpace(cfg.Source.URL),
		ConsentSelector: strings.TrimSpace(cfg.Source.ConsentSelector),
		ContentSelector: strings.TrimSpace(cfg.Source.ContentSelector),
		Cookies:         cfg.Source.Cookies,
		UserAgent:       cfg.Source.UserAgent,
		Timeout:         timeout,
	}, nil
}

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func mapSchedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{Timezone: strings.TrimSpace(cfg.Schedule.Timezone)}
}

// chatTarget returns the notification target; ChatID is 0 when messaging
// credentials are incomplete.
func chatTarget(cfg *config.Config) kit.ChatTarget {
	id, ok := cfg.ChatID()
	if !ok {
		return kit.ChatTarget{}
	}
	return kit.ChatTarget{ChatID: id, ThreadID: cfg.Telegram.ThreadID}
}

func trackerSettings(cfg *config.Config) watch.Settings {
	return watch.Settings{
		SourceLabel:   cfg.SourceLabel(),
		Keywords:      config.ParseKeywords(cfg.Keywords),
		ContextRadius: cfg.ContextRadius(),
		SnippetLimit:  cfg.Match.SnippetLimit,
		SnippetWidth:  cfg.Match.SnippetWidth,
		MessageCap:    cfg.Match.MessageCap,
		Target:        chatTarget(cfg),
	}
}

// buildSender returns nil when credentials are missing so callers can skip
// delivery.
func buildSender(cfg *config.Config, log logx.Logger) (kit.Sender, error) {
	if _, ok := cfg.ChatID(); !ok {
		return nil, nil
	}
	timeout, err := config.ParseDurationOrDefault("telegram.timeout", cfg.Telegram.Timeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:   strings.TrimSpace(cfg.Telegram.Token),
		APIURL:  strings.TrimSpace(cfg.Telegram.APIURL),
		Timeout: timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return ad, nil
}

package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"

	kit "pagewatch/internal/transport"
	logx "pagewatch/pkg/logx"
)

// telegramTextLimit is Telegram's hard cap for one message, in characters.
const telegramTextLimit = 4096

type Config struct {
	Token string
	// APIURL overrides the Bot API endpoint (default https://api.telegram.org).
	APIURL string
	// Timeout bounds each Bot API request.
	Timeout time.Duration
}

// Adapter sends operator messages through the Telegram Bot API.
// It never polls for updates.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		URL:   strings.TrimSpace(cfg.APIURL),
		Token: cfg.Token,
		// Offline skips the getMe round-trip; the bot only sends.
		Offline: true,
		Client:  &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// SendText delivers text as a single message. Text over Telegram's limit is
// cut on a rune boundary; callers are expected to stay within it.
func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return kit.MessageRef{}, err
		}
	}
	if n := utf8.RuneCountInString(text); n > telegramTextLimit {
		a.log.Warn("message over telegram limit; truncating", logx.Int("runes", n))
		text = string([]rune(text)[:telegramTextLimit-1]) + "…"
	}

	start := time.Now()
	msg, err := a.bot.Send(&tele.Chat{ID: to.ChatID}, text, &tele.SendOptions{
		ParseMode:             tele.ParseMode(opt.ParseMode),
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	})
	if err != nil {
		return kit.MessageRef{}, err
	}
	a.log.Debug("message sent", logx.Int64("chat_id", to.ChatID), logx.Duration("took", time.Since(start)))
	return kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: msg.ID}, nil
}

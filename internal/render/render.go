// Package render extracts the text of a page region for the tracker.
//
// Failures never surface as errors: every problem (network, status, missing
// selector) becomes an Unavailable result so the caller can treat it as
// "no text" without exception-style control flow.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	logx "pagewatch/pkg/logx"
)

// Result is the outcome of one extraction: either Ok(text) or Unavailable(reason).
type Result struct {
	Text        string
	Unavailable string
}

func Ok(text string) Result { return Result{Text: text} }

func Unavailable(reason string) Result {
	if strings.TrimSpace(reason) == "" {
		reason = "unavailable"
	}
	return Result{Unavailable: reason}
}

func (r Result) OK() bool { return r.Unavailable == "" }

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; pagewatch/1.0)"
	maxBodyBytes     = 8 << 20
)

// Config configures HTTPRenderer.
type Config struct {
	URL string
	// ConsentSelector matches consent/age overlays that are stripped before
	// extraction. Optional.
	ConsentSelector string
	// ContentSelector matches the region whose text is extracted. Defaults to "body".
	ContentSelector string
	// Cookies are sent with every request, e.g. a pre-accepted consent cookie.
	Cookies   map[string]string
	UserAgent string
	Timeout   time.Duration
}

// HTTPRenderer fetches a page over HTTP and extracts text with goquery.
type HTTPRenderer struct {
	cfg    Config
	client *http.Client
	log    logx.Logger
}

func NewHTTP(cfg Config, log logx.Logger) (*HTTPRenderer, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("render: url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if strings.TrimSpace(cfg.ContentSelector) == "" {
		cfg.ContentSelector = "body"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &HTTPRenderer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

// Render loads the page and returns the text of the content selector.
func (r *HTTPRenderer) Render(ctx context.Context) Result {
	start := time.Now()
	r.log.Debug("loading page", logx.String("url", r.cfg.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, http.NoBody)
	if err != nil {
		return Unavailable(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for name, value := range r.cfg.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Unavailable(fmt.Sprintf("fetch: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Unavailable(fmt.Sprintf("parse html: %v", err))
	}

	if sel := strings.TrimSpace(r.cfg.ConsentSelector); sel != "" {
		consent := doc.Find(sel)
		if n := consent.Length(); n > 0 {
			consent.Remove()
			r.log.Debug("consent element dismissed", logx.String("selector", sel), logx.Int("nodes", n))
		} else {
			r.log.Debug("no consent element found", logx.String("selector", sel))
		}
	}
	// Script and style bodies are not page text.
	doc.Find("script, style, noscript, template").Remove()

	content := doc.Find(r.cfg.ContentSelector)
	if content.Length() == 0 {
		return Unavailable(fmt.Sprintf("content selector %q not found", r.cfg.ContentSelector))
	}

	parts := make([]string, 0, content.Length())
	content.Each(func(_ int, s *goquery.Selection) {
		if t := normalizeText(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, "\n")

	r.log.Debug("page extracted",
		logx.Int("chars", len(text)),
		logx.Duration("took", time.Since(start)),
	)
	return Ok(text)
}

// normalizeText collapses runs of blanks inside each line and drops empty lines.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if ln = strings.Join(strings.Fields(ln), " "); ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

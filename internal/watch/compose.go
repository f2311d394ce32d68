package watch

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSnippetLimit = 3
	DefaultSnippetWidth = 120
	DefaultMessageCap   = 4000

	ellipsis = "…"
)

// ComposeOptions controls how a DiffResult is rendered for the operator.
type ComposeOptions struct {
	SourceLabel string
	// Keywords is the configured keyword order used for display.
	// Keywords not listed here are appended alphabetically.
	Keywords []string

	SnippetLimit int // per keyword
	SnippetWidth int // runes per snippet, before the ellipsis
	MessageCap   int // runes per message, ellipsis included
}

func (o ComposeOptions) withDefaults() ComposeOptions {
	if o.SnippetLimit <= 0 {
		o.SnippetLimit = DefaultSnippetLimit
	}
	if o.SnippetWidth <= 0 {
		o.SnippetWidth = DefaultSnippetWidth
	}
	if o.MessageCap <= 0 {
		o.MessageCap = DefaultMessageCap
	}
	return o
}

// Compose renders d as a plain-text message. It returns false when d is
// empty and nothing should be sent.
func Compose(d DiffResult, opts ComposeOptions) (string, bool) {
	if d.Empty() {
		return "", false
	}
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString(header(opts.SourceLabel, opts.MessageCap))

	for _, k := range displayOrder(d, opts.Keywords) {
		ctxs := d.NewContexts[k]
		b.WriteString("\n\n🔑 ")
		b.WriteString(k)
		switch {
		case d.isNewKeyword(k):
			fmt.Fprintf(&b, " (new keyword, %s)", plural(len(ctxs), "match", "matches"))
		default:
			fmt.Fprintf(&b, " (%s)", plural(len(ctxs), "new match", "new matches"))
		}

		shown := min(len(ctxs), opts.SnippetLimit)
		for _, c := range ctxs[:shown] {
			b.WriteString("\n • ")
			b.WriteString(TruncRunes(strings.TrimSpace(c), opts.SnippetWidth))
		}
		if rest := len(ctxs) - shown; rest > 0 {
			fmt.Fprintf(&b, "\n • …and %d more", rest)
		}
	}

	msg := b.String()
	if utf8.RuneCountInString(msg) > opts.MessageCap {
		msg = TruncRunes(msg, opts.MessageCap-1)
	}
	return msg, true
}

// header renders the first line. The label is shortened so the header uses at
// most half of the message cap and survives final truncation.
func header(label string, msgCap int) string {
	const prefix = "✅ New keyword matches on "
	label = strings.TrimSpace(label)
	if label == "" {
		label = "watched page"
	}
	budget := msgCap/2 - utf8.RuneCountInString(prefix) - 1
	if budget < 1 {
		budget = 1
	}
	return prefix + TruncRunes(label, budget)
}

func displayOrder(d DiffResult, configured []string) []string {
	present := make(map[string]struct{}, len(d.NewContexts)+len(d.NewKeywords))
	for k, ctxs := range d.NewContexts {
		if len(ctxs) > 0 {
			present[k] = struct{}{}
		}
	}
	for _, k := range d.NewKeywords {
		present[k] = struct{}{}
	}

	order := make([]string, 0, len(present))
	for _, raw := range configured {
		k := strings.ToLower(raw)
		if _, ok := present[k]; ok {
			order = append(order, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// TruncRunes returns s truncated to at most n runes.
// It appends an ellipsis "…" when truncated.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	cut := 0
	for i := range s {
		count++
		if count == n {
			_, size := utf8.DecodeRuneInString(s[i:])
			cut = i + size
			continue
		}
		if count > n {
			if cut <= 0 {
				cut = i
			}
			return s[:cut] + ellipsis
		}
	}
	return s
}

package watch

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FindMatches scans text for every keyword and returns the context window
// around each occurrence.
//
// Matching is a case-insensitive literal substring search. Text and keywords
// are NFC-normalised and lower-cased rune by rune (the same mapping as
// strings.ToLower), so the result is keyed by the lower-cased keyword and
// contexts are cut from the lower-cased text. Occurrences of one keyword
// never overlap; different keywords are matched independently.
func FindMatches(text string, keywords []string, radius int) MatchSet {
	if radius < 0 {
		radius = 0
	}
	src := lowerRunes(text)

	out := MatchSet{}
	seen := make(map[string]struct{}, len(keywords))
	for _, raw := range keywords {
		kw := lowerRunes(raw)
		if len(kw) == 0 {
			continue
		}
		key := strings.ToLower(raw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		for i := indexRunes(src, kw, 0); i >= 0; i = indexRunes(src, kw, i+len(kw)) {
			out[key] = append(out[key], contextWindow(src, i, len(kw), radius))
		}
	}
	return out
}

func lowerRunes(s string) []rune {
	rs := []rune(norm.NFC.String(s))
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

// contextWindow returns src[at-radius+1 : at+n+radius+1], clamped to the
// bounds, with newlines turned into spaces. The window holds n+2*radius
// runes and ends one rune past the symmetric window. With radius 0 it is
// the occurrence itself.
func contextWindow(src []rune, at, n, radius int) string {
	start, end := at, at+n
	if radius > 0 {
		start = max(at-radius+1, 0)
		end = min(at+n+radius+1, len(src))
	}
	return newlineReplacer.Replace(string(src[start:end]))
}

// indexRunes returns the index of the first occurrence of sub in s at or
// after from, or -1.
func indexRunes(s, sub []rune, from int) int {
	last := len(s) - len(sub)
outer:
	for i := from; i <= last; i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

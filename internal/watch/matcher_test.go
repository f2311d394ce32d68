package watch

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFindMatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		text     string
		keywords []string
		radius   int
		want     MatchSet
	}{
		{
			name:     "two occurrences",
			text:     "widget available now available soon",
			keywords: []string{"available"},
			radius:   5,
			want:     MatchSet{"available": {"get available now a", "now available soon"}},
		},
		{
			name:     "case insensitive",
			text:     "Widget AVAILABLE today",
			keywords: []string{"Available"},
			radius:   3,
			want:     MatchSet{"available": {"t available tod"}},
		},
		{
			name:     "window clamped at both ends",
			text:     "in stock",
			keywords: []string{"in stock"},
			radius:   40,
			want:     MatchSet{"in stock": {"in stock"}},
		},
		{
			name:     "zero radius yields the keyword",
			text:     "sold out, in stock later",
			keywords: []string{"stock"},
			radius:   0,
			want:     MatchSet{"stock": {"stock"}},
		},
		{
			name:     "newlines become spaces",
			text:     "now\nin\nstock",
			keywords: []string{"stock"},
			radius:   8,
			want:     MatchSet{"stock": {"now in stock"}},
		},
		{
			name:     "crlf becomes one space",
			text:     "a\r\nstock",
			keywords: []string{"stock"},
			radius:   3,
			want:     MatchSet{"stock": {" stock"}},
		},
		{
			name:     "occurrences do not overlap",
			text:     "aaaa",
			keywords: []string{"aa"},
			radius:   0,
			want:     MatchSet{"aa": {"aa", "aa"}},
		},
		{
			name:     "absent keyword is omitted",
			text:     "sold out",
			keywords: []string{"available", "sold"},
			radius:   1,
			want:     MatchSet{"sold": {"sold o"}},
		},
		{
			name:     "duplicate and empty keywords are skipped",
			text:     "in stock",
			keywords: []string{"Stock", "", "stock"},
			radius:   0,
			want:     MatchSet{"stock": {"stock"}},
		},
		{
			name:     "empty text",
			text:     "",
			keywords: []string{"available"},
			radius:   10,
			want:     MatchSet{},
		},
		{
			name:     "multibyte runes",
			text:     "Größe verfügbar jetzt",
			keywords: []string{"verfügbar"},
			radius:   2,
			want:     MatchSet{"verfügbar": {" verfügbar je"}},
		},
		{
			name:     "keyed by the lower-cased keyword",
			text:     "Große STRASSE, kleine Straße",
			keywords: []string{"Straße"},
			radius:   0,
			want:     MatchSet{"straße": {"straße"}},
		},
		{
			name:     "dotted capital i lowers to plain i",
			text:     "İSTANBUL office",
			keywords: []string{"istanbul"},
			radius:   0,
			want:     MatchSet{"istanbul": {"istanbul"}},
		},
		{
			name:     "decomposed accents match composed keyword",
			text:     "cafe\u0301 open",
			keywords: []string{"café"},
			radius:   0,
			want:     MatchSet{"café": {"café"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FindMatches(tt.text, tt.keywords, tt.radius)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FindMatches() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFindMatchesDifferentKeywordsMayOverlap(t *testing.T) {
	t.Parallel()
	got := FindMatches("back in stock", []string{"in stock", "stock"}, 0)
	want := MatchSet{"in stock": {"in stock"}, "stock": {"stock"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindMatches() = %#v, want %#v", got, want)
	}
	if got.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", got.Count())
	}
}

func TestFindMatchesNegativeRadius(t *testing.T) {
	t.Parallel()
	got := FindMatches("in stock", []string{"stock"}, -3)
	if want := (MatchSet{"stock": {"stock"}}); !reflect.DeepEqual(got, want) {
		t.Fatalf("FindMatches() = %#v, want %#v", got, want)
	}
}

func TestContextWindowLength(t *testing.T) {
	t.Parallel()
	text := "0123456789 stock 0123456789"
	for radius := 0; radius <= 8; radius++ {
		got := FindMatches(text, []string{"stock"}, radius)["stock"]
		if len(got) != 1 {
			t.Fatalf("radius %d: got %v", radius, got)
		}
		if n := utf8.RuneCountInString(got[0]); n != len("stock")+2*radius {
			t.Fatalf("radius %d: window %q has %d runes, want %d", radius, got[0], n, len("stock")+2*radius)
		}
		if !strings.Contains(got[0], "stock") {
			t.Fatalf("radius %d: window %q lost the keyword", radius, got[0])
		}
	}
}

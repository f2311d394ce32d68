package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want []string
	}{
		{"available,in stock", []string{"available", "in stock"}},
		{" Available , IN STOCK ,, available ", []string{"available", "in stock"}},
		{"", []string{}},
		{" , ,", []string{}},
	}
	for _, tt := range tests {
		if got := ParseKeywords(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseKeywords(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Parallel()
	m := NewConfigManager("")
	m.SetEnvLookup(envMap(map[string]string{
		EnvURL:       "https://shop.example/item",
		EnvKeywords:  "Restock",
		EnvBotToken:  "123:abc",
		EnvChatID:    "-1001",
		EnvStateFile: "/tmp/pw/history.json",
	}))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.URL != "https://shop.example/item" || cfg.Storage.Path != "/tmp/pw/history.json" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if got := ParseKeywords(cfg.Keywords); !reflect.DeepEqual(got, []string{"restock"}) {
		t.Fatalf("keywords = %#v", got)
	}
	if id, ok := cfg.ChatID(); !ok || id != -1001 {
		t.Fatalf("ChatID() = %d, %v", id, ok)
	}
	if cfg.Source.ConsentSelector != DefaultConsentSelector || cfg.ContextRadius() != DefaultContextRadius {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	if m.Get() != cfg {
		t.Fatal("Load should commit the config")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.yaml", `
source:
  url: https://file.example/
  label: Shop
  cookies:
    age_verified: "1"
keywords: "sold out"
match:
  context_radius: 10
  message_cap: 500
schedule:
  every: "*/5 * * * *"
  run_on_start: false
storage:
  driver: sqlite
  path: ./state/history.db
logging:
  level: debug
`)
	m := NewConfigManager(path)
	m.SetEnvLookup(envMap(map[string]string{EnvURL: "https://env.example/"}))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.URL != "https://env.example/" {
		t.Fatalf("env should win over file: %q", cfg.Source.URL)
	}
	if cfg.SourceLabel() != "Shop" || cfg.Source.Cookies["age_verified"] != "1" {
		t.Fatalf("source not parsed: %+v", cfg.Source)
	}
	if cfg.ContextRadius() != 10 || cfg.Match.MessageCap != 500 || cfg.Match.SnippetLimit != DefaultSnippetLimit {
		t.Fatalf("match not parsed: %+v", cfg.Match)
	}
	if cfg.RunOnStart() {
		t.Fatal("run_on_start: false ignored")
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("unexpected storage/logging: %+v %+v", cfg.Storage, cfg.Logging)
	}
	if _, ok := cfg.ChatID(); ok {
		t.Fatal("ChatID should report missing credentials")
	}
}

func TestContextRadiusZeroIsKept(t *testing.T) {
	t.Parallel()
	zero := writeFile(t, "config.yaml", "source:\n  url: https://x\nmatch:\n  context_radius: 0\n")
	cfg, err := NewConfigManager(zero).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.ContextRadius(); got != 0 {
		t.Fatalf("ContextRadius() = %d, want 0", got)
	}

	omitted := writeFile(t, "config.yaml", "source:\n  url: https://x\n")
	cfg, err = NewConfigManager(omitted).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.ContextRadius(); got != DefaultContextRadius {
		t.Fatalf("ContextRadius() = %d, want %d", got, DefaultContextRadius)
	}
}

func TestParseRejectsUnknownFieldsAndTrailingData(t *testing.T) {
	t.Parallel()
	unknown := writeFile(t, "config.json", `{"source":{"url":"https://x"},"nope":1}`)
	if _, err := NewConfigManager(unknown).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
	trailing := writeFile(t, "config.json", `{"source":{"url":"https://x"}}{}`)
	if _, err := NewConfigManager(trailing).Parse(); err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("expected trailing data error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		cfg := Default()
		cfg.Source.URL = "https://x"
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "missing url", mutate: func(c *Config) { c.Source.URL = " " }},
		{name: "no keywords", mutate: func(c *Config) { c.Keywords = " , " }},
		{name: "zero radius", mutate: func(c *Config) { zero := 0; c.Match.ContextRadius = &zero }, ok: true},
		{name: "negative radius", mutate: func(c *Config) { neg := -1; c.Match.ContextRadius = &neg }},
		{name: "cap too small", mutate: func(c *Config) { c.Match.MessageCap = 10 }},
		{name: "cap too large", mutate: func(c *Config) { c.Match.MessageCap = 5000 }},
		{name: "bad timeout", mutate: func(c *Config) { c.Source.Timeout = "soon" }},
		{name: "bad chat id", mutate: func(c *Config) { c.Telegram.ChatID = "@channel" }},
		{name: "bad timezone", mutate: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	oldCfg := Default()
	oldCfg.Source.URL = "https://x"
	oldCfg.Telegram.Token = "secret-token"

	newCfg := *oldCfg
	newCfg.Keywords = "restock"
	newCfg.Telegram.Token = "other-secret"
	five := 5
	newCfg.Match.ContextRadius = &five

	changed, attrs := SummarizeConfigChange(oldCfg, &newCfg)
	if want := []string{"keywords", "match", "telegram"}; !reflect.DeepEqual(changed, want) {
		t.Fatalf("changed = %v, want %v", changed, want)
	}
	if len(attrs) == 0 {
		t.Fatal("expected attrs")
	}

	if changed, _ := SummarizeConfigChange(oldCfg, oldCfg); len(changed) != 0 {
		t.Fatalf("identical configs reported changes: %v", changed)
	}
}

func TestHashConfigIgnoresPointerIdentity(t *testing.T) {
	t.Parallel()
	a := Default()
	b := Default()
	if hashConfig(a) != hashConfig(b) {
		t.Fatal("equal configs should hash equally")
	}
	b.Keywords = "other"
	if hashConfig(a) == hashConfig(b) {
		t.Fatal("different configs should hash differently")
	}
}

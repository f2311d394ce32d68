package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logx "pagewatch/pkg/logx"
)

const testPage = `<!doctype html>
<html><head><title>Shop</title><style>.x{color:red}</style></head>
<body>
  <div id="age-gate"><button id="age-consent-accept">I am 18+ and available</button></div>
  <main id="product">
    <h1>Widget</h1>
    <p>Status:   available
       now</p>
    <script>var available = true;</script>
  </main>
  <footer>in stock elsewhere</footer>
</body></html>`

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestRenderExtractsContentRegion(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, testPage)
	r, err := NewHTTP(Config{
		URL:             srv.URL,
		ConsentSelector: "#age-gate",
		ContentSelector: "#product",
	}, logx.Nop())
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	res := r.Render(context.Background())
	if !res.OK() {
		t.Fatalf("Render unavailable: %s", res.Unavailable)
	}
	want := "Widget\nStatus: available\nnow"
	if res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
}

func TestRenderRemovesConsentAndScripts(t *testing.T) {
	srv, req := newTestServer(t, http.StatusOK, testPage)
	r, err := NewHTTP(Config{
		URL:             srv.URL,
		ConsentSelector: "button#age-consent-accept",
		Cookies:         map[string]string{"age_verified": "1"},
	}, logx.Nop())
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	res := r.Render(context.Background())
	if !res.OK() {
		t.Fatalf("Render unavailable: %s", res.Unavailable)
	}
	if strings.Contains(res.Text, "18+") {
		t.Fatalf("consent element not removed: %q", res.Text)
	}
	if strings.Contains(res.Text, "var available") || strings.Contains(res.Text, "color:red") {
		t.Fatalf("script or style text leaked: %q", res.Text)
	}
	if !strings.Contains(res.Text, "in stock elsewhere") {
		t.Fatalf("body text missing: %q", res.Text)
	}

	if c, err := req.Cookie("age_verified"); err != nil || c.Value != "1" {
		t.Fatalf("cookie not sent: %v %v", c, err)
	}
	if ua := req.Header.Get("User-Agent"); ua != defaultUserAgent {
		t.Fatalf("User-Agent = %q", ua)
	}
}

func TestRenderUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		selector string
		reason   string
	}{
		{name: "server error", status: http.StatusInternalServerError, reason: "status code: 500"},
		{name: "not found", status: http.StatusNotFound, reason: "status code: 404"},
		{name: "missing selector", status: http.StatusOK, selector: "#nope", reason: `"#nope" not found`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, testPage)
			r, err := NewHTTP(Config{URL: srv.URL, ContentSelector: tt.selector}, logx.Nop())
			if err != nil {
				t.Fatalf("NewHTTP: %v", err)
			}
			res := r.Render(context.Background())
			if res.OK() || res.Text != "" {
				t.Fatalf("expected unavailable, got %+v", res)
			}
			if !strings.Contains(res.Unavailable, tt.reason) {
				t.Fatalf("Unavailable = %q, want it to contain %q", res.Unavailable, tt.reason)
			}
		})
	}
}

func TestRenderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	r, err := NewHTTP(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, logx.Nop())
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	if res := r.Render(context.Background()); res.OK() {
		t.Fatalf("expected unavailable on timeout, got %+v", res)
	}
}

func TestNewHTTPRequiresURL(t *testing.T) {
	if _, err := NewHTTP(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestNormalizeText(t *testing.T) {
	got := normalizeText("  a   b \n\n\t c\n   ")
	if got != "a b\nc" {
		t.Fatalf("normalizeText = %q", got)
	}
}

func TestUnavailableDefaultsReason(t *testing.T) {
	if r := Unavailable(" "); r.OK() || r.Unavailable != "unavailable" {
		t.Fatalf("Unavailable(\" \") = %+v", r)
	}
}

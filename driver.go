package xposts

import (
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// Driver is the control surface the crawler needs from a browser. The
// production implementation is Browser; tests drive a fake.
type Driver interface {
	Open(url string) error
	WaitFor(selector string, timeout time.Duration) error
	ScrollToBottom() error
	HTML() (string, error)
	LoginRequired() bool
	Close() error
}

// Browser drives a stealth Chromium instance. Zero value is not usable;
// call NewBrowser then Launch.
type Browser struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page
}

// NewBrowser creates a Browser from the run configuration. The Chromium
// process is not started until Launch is called.
func NewBrowser(cfg Config) *Browser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Browser{cfg: cfg}
}

func hostOf(baseURL string) string {
	host := strings.TrimPrefix(baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}

func isLoginURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "/login") || strings.Contains(lower, "/i/flow")
}

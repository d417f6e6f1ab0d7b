//go:build !unittest

package xposts

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Launch starts Chromium with stealth mode and a blank page. Cookies must
// be injected before the first navigation to the platform so the session
// is treated as already authenticated.
func (b *Browser) Launch() error {
	l := launcher.New().Headless(b.cfg.Headless)
	if b.cfg.Proxy != "" {
		l = l.Proxy(b.cfg.Proxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}

	b.browser = browser
	b.page = page

	b.setupResourceBlocking()
	return nil
}

func (b *Browser) setupResourceBlocking() {
	router := b.browser.HijackRequests()
	blocked := []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.mp4", "*.woff*", "*.svg", "*analytics*"}
	for _, pattern := range blocked {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

// InjectCookies sets session cookies on the page, filtered to the platform
// domain. Foreign-domain cookies are dropped rather than rejected.
func (b *Browser) InjectCookies(set CookieSet) error {
	if b.page == nil {
		return ErrBrowserNotReady
	}

	domain := hostOf(b.cfg.BaseURL)
	for _, c := range set.ForDomain(domain) {
		param := &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		}
		if param.Domain == "" {
			param.Domain = "." + domain
		}
		if param.Path == "" {
			param.Path = "/"
		}
		if c.ExpirationDate > 0 {
			param.Expires = proto.TimeSinceEpoch(c.ExpirationDate)
		}
		if c.Secure {
			param.Secure = true
		}
		if c.HTTPOnly {
			param.HTTPOnly = true
		}
		if err := b.page.SetCookies([]*proto.NetworkCookieParam{param}); err != nil {
			return fmt.Errorf("set browser cookie %q: %w", c.Name, err)
		}
	}
	return nil
}

// Cookies returns the browser's current cookies for the platform, for
// explicit operator re-export after an interactive login.
func (b *Browser) Cookies() (CookieSet, error) {
	if b.page == nil {
		return nil, ErrBrowserNotReady
	}

	cookies, err := b.page.Cookies([]string{b.cfg.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("get browser cookies: %w", err)
	}

	set := make(CookieSet, 0, len(cookies))
	for _, c := range cookies {
		set = append(set, Cookie{
			Domain:         c.Domain,
			Name:           c.Name,
			Value:          c.Value,
			Path:           c.Path,
			ExpirationDate: float64(c.Expires),
			Secure:         c.Secure,
			HTTPOnly:       c.HTTPOnly,
		})
	}
	return set, nil
}

// Open navigates to the URL and waits for the page to settle.
func (b *Browser) Open(url string) error {
	if b.page == nil {
		return ErrBrowserNotReady
	}
	if err := b.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := b.page.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait for page stable: %w", err)
	}
	return nil
}

// WaitFor blocks until an element matching the selector is present, or the
// timeout elapses. A timeout is a recoverable ErrFeedTimeout, never fatal.
func (b *Browser) WaitFor(selector string, timeout time.Duration) error {
	if b.page == nil {
		return ErrBrowserNotReady
	}
	if _, err := b.page.Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("%w: %q after %v", ErrFeedTimeout, selector, timeout)
	}
	return nil
}

// ScrollToBottom triggers the feed's next incremental load.
func (b *Browser) ScrollToBottom() error {
	if b.page == nil {
		return ErrBrowserNotReady
	}
	if _, err := b.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

// HTML returns the currently rendered DOM.
func (b *Browser) HTML() (string, error) {
	if b.page == nil {
		return "", ErrBrowserNotReady
	}
	html, err := b.page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// CurrentURL returns the page's current location, empty if unknown.
func (b *Browser) CurrentURL() string {
	if b.page == nil {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// LoginRequired reports whether the platform redirected to its login flow.
func (b *Browser) LoginRequired() bool {
	return isLoginURL(b.CurrentURL())
}

// WaitForLogin polls until the page leaves the login flow, for the
// interactive-login pause. Returns ErrLoginRequired if the operator never
// completes it within the timeout.
func (b *Browser) WaitForLogin(timeout time.Duration) error {
	if b.page == nil {
		return ErrBrowserNotReady
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !b.LoginRequired() {
			return nil
		}
		time.Sleep(2 * time.Second)
	}
	return fmt.Errorf("login not completed within %v: %w", timeout, ErrLoginRequired)
}

// Close releases the page and the Chromium process. Safe to call more than
// once and on every exit path.
func (b *Browser) Close() error {
	if b.page != nil {
		if err := b.page.Close(); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
		b.page = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		b.browser = nil
	}
	return nil
}

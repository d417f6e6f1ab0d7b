//go:build unittest

package xposts

import "time"

func (b *Browser) Launch() error {
	return ErrBrowserNotReady
}

func (b *Browser) InjectCookies(set CookieSet) error {
	return ErrBrowserNotReady
}

func (b *Browser) Cookies() (CookieSet, error) {
	return nil, ErrBrowserNotReady
}

func (b *Browser) Open(url string) error {
	return ErrBrowserNotReady
}

func (b *Browser) WaitFor(selector string, timeout time.Duration) error {
	return ErrBrowserNotReady
}

func (b *Browser) ScrollToBottom() error {
	return ErrBrowserNotReady
}

func (b *Browser) HTML() (string, error) {
	return "", ErrBrowserNotReady
}

func (b *Browser) CurrentURL() string {
	return ""
}

func (b *Browser) LoginRequired() bool {
	return false
}

func (b *Browser) WaitForLogin(timeout time.Duration) error {
	return ErrBrowserNotReady
}

func (b *Browser) Close() error {
	b.page = nil
	b.browser = nil
	return nil
}

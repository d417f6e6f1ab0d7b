package xposts

import "errors"

var (
	ErrLoginRequired          = errors.New("xposts: interactive login required")
	ErrMalformedCookies       = errors.New("xposts: malformed cookie file")
	ErrFeedTimeout            = errors.New("xposts: timed out waiting for feed")
	ErrBlocked                = errors.New("xposts: rate limited or blocked")
	ErrBrowserNotReady        = errors.New("xposts: browser not initialized")
	ErrDestinationUnavailable = errors.New("xposts: export destination unavailable")
)

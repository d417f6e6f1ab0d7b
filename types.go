package xposts

import "time"

// Post represents a single X post extracted from the search feed.
type Post struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	AuthorHandle string    `json:"author"`
	AuthorName   string    `json:"author_name,omitempty"`
	AuthorURL    string    `json:"author_url"`
	Text         string    `json:"text,omitempty"`
	Likes        int       `json:"likes"`
	Keyword      string    `json:"keyword,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`

	// LikesParsed is false when the rendered like count could not be
	// parsed. Such records carry Likes == 0 but must not be ranked as if
	// they genuinely had zero likes.
	LikesParsed bool `json:"likes_parsed"`
}

// Cookie mirrors one entry of a browser cookie-export file
// (Cookie-Editor style JSON).
type Cookie struct {
	Domain         string  `json:"domain"`
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Path           string  `json:"path,omitempty"`
	ExpirationDate float64 `json:"expirationDate,omitempty"`
	Secure         bool    `json:"secure,omitempty"`
	HTTPOnly       bool    `json:"httpOnly,omitempty"`
	SameSite       string  `json:"sameSite,omitempty"`
}

// CookieSet is a reusable authenticated-session cookie bundle. It is
// read-only after load; the browser receives a converted copy.
type CookieSet []Cookie

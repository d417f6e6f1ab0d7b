package xposts

import (
	"fmt"
	"time"
)

const defaultBaseURL = "https://x.com"

// Config holds every operator-facing run parameter. It is built once at
// process start (flags and .env in cmd) and passed into components;
// nothing in this package reads the process environment directly.
type Config struct {
	// Keywords to search, one crawl each, strictly sequential.
	Keywords []string
	// TargetCount is the ranked result size per keyword.
	TargetCount int

	// Browser settings.
	Headless bool
	Proxy    string
	BaseURL  string // defaults to "https://x.com"

	// Session cookie export file (JSON).
	CookiesPath string
	// SaveCookiesPath, when set, re-exports the browser session after an
	// interactive login.
	SaveCookiesPath string

	// Google Sheets destination. Empty CredentialsPath disables it.
	CredentialsPath string
	SpreadsheetID   string
	SpreadsheetName string
	SheetName       string

	// Local file fallback destination (.json or .csv).
	OutputPath string

	// Crawl tuning.
	WaitTimeout   time.Duration // bound on each feed-readiness wait
	ScrollDelay   time.Duration // minimum delay between scroll rounds
	StagnantLimit int           // consecutive empty rounds before giving up
	MaxRounds     int           // hard cap on scroll rounds per keyword
}

// DefaultConfig returns a Config with the defaults the CLI advertises.
func DefaultConfig() Config {
	return Config{
		TargetCount:     10,
		Headless:        true,
		BaseURL:         defaultBaseURL,
		CookiesPath:     "cookies.json",
		SpreadsheetName: "X Top Posts",
		SheetName:       "Top Posts",
		OutputPath:      "posts.json",
		WaitTimeout:     10 * time.Second,
		ScrollDelay:     2 * time.Second,
		StagnantLimit:   3,
		MaxRounds:       30,
	}
}

// Validate checks the parameters a run cannot proceed without.
func (c Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("config: at least one keyword is required")
	}
	for _, kw := range c.Keywords {
		if kw == "" {
			return fmt.Errorf("config: empty keyword")
		}
	}
	if c.TargetCount <= 0 {
		return fmt.Errorf("config: target count must be positive, got %d", c.TargetCount)
	}
	if c.StagnantLimit <= 0 {
		return fmt.Errorf("config: stagnant limit must be positive, got %d", c.StagnantLimit)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("config: base url is required")
	}
	return nil
}

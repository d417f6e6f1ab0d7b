package xposts

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// feedReadySelector matches any of the post layouts the extractor knows,
// so readiness means "at least one post node is rendered".
const feedReadySelector = `article[data-testid="tweet"], div[data-testid="tweet"], article[role="article"]`

// Crawler drives one authenticated browser session through the search feed
// for a keyword, accumulating unique posts until the target count is
// reached or the feed stagnates.
type Crawler struct {
	driver Driver
	log    zerolog.Logger

	baseURL       string
	target        int
	waitTimeout   time.Duration
	scrollDelay   time.Duration
	stagnantLimit int
	maxRounds     int

	lastScroll time.Time
}

// NewCrawler creates a Crawler over the given driver. The driver's
// lifecycle (launch, cookie injection, close) belongs to the caller; one
// session serves all keywords sequentially.
func NewCrawler(driver Driver, cfg Config) *Crawler {
	c := &Crawler{
		driver:        driver,
		log:           zerolog.Nop(),
		baseURL:       cfg.BaseURL,
		target:        cfg.TargetCount,
		waitTimeout:   cfg.WaitTimeout,
		scrollDelay:   cfg.ScrollDelay,
		stagnantLimit: cfg.StagnantLimit,
		maxRounds:     cfg.MaxRounds,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.stagnantLimit <= 0 {
		c.stagnantLimit = 3
	}
	if c.maxRounds <= 0 {
		c.maxRounds = 30
	}
	return c
}

// WithLogger sets the structured logger used during crawls.
func (c *Crawler) WithLogger(log zerolog.Logger) *Crawler {
	c.log = log
	return c
}

// searchURL builds the platform search URL for a keyword, on the live feed
// the platform serves to authenticated sessions.
func searchURL(baseURL, keyword string) string {
	return fmt.Sprintf("%s/search?q=%s&src=typed_query&f=live", baseURL, url.QueryEscape(keyword))
}

// Crawl runs the full loop for one keyword and returns unique posts in
// first-seen order. Partial results are always returned alongside errors
// so the caller can still export them.
//
// Termination: target count reached, the configured number of consecutive
// rounds yielding no new posts (stagnation), the hard round cap, context
// cancellation, or a login redirect.
func (c *Crawler) Crawl(ctx context.Context, keyword string) ([]Post, error) {
	if keyword == "" {
		return nil, fmt.Errorf("crawl: keyword is required")
	}

	log := c.log.With().Str("keyword", keyword).Logger()
	target := searchURL(c.baseURL, keyword)
	log.Info().Str("url", target).Msg("opening search feed")

	if err := c.driver.Open(target); err != nil {
		return nil, fmt.Errorf("crawl %q: %w", keyword, err)
	}

	seen := make(map[string]bool)
	var posts []Post
	stagnant := 0

	for round := 0; round < c.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return posts, fmt.Errorf("crawl %q: %w", keyword, err)
		}
		if c.driver.LoginRequired() {
			return posts, fmt.Errorf("crawl %q: %w", keyword, ErrLoginRequired)
		}

		fresh := 0
		if err := c.driver.WaitFor(feedReadySelector, c.waitTimeout); err != nil {
			// Recoverable: the round is counted as stagnant below.
			log.Warn().Err(err).Int("round", round).Msg("feed not ready")
		} else {
			html, err := c.driver.HTML()
			if err != nil {
				return posts, fmt.Errorf("crawl %q: %w", keyword, err)
			}
			records, err := Extract(html)
			if err != nil {
				return posts, fmt.Errorf("crawl %q: %w", keyword, err)
			}
			for _, p := range records {
				if seen[p.ID] {
					continue
				}
				seen[p.ID] = true
				p.Keyword = keyword
				posts = append(posts, p)
				fresh++
			}
		}

		if fresh == 0 {
			stagnant++
		} else {
			stagnant = 0
		}
		log.Debug().
			Int("round", round).
			Int("new", fresh).
			Int("total", len(posts)).
			Int("stagnant", stagnant).
			Msg("crawl round")

		if len(posts) >= c.target {
			log.Info().Int("posts", len(posts)).Msg("target reached")
			return posts, nil
		}
		if stagnant >= c.stagnantLimit {
			if len(posts) == 0 {
				return nil, fmt.Errorf("crawl %q: no posts after %d empty rounds: %w",
					keyword, stagnant, ErrBlocked)
			}
			log.Info().Int("posts", len(posts)).Msg("feed stagnant, stopping")
			return posts, nil
		}

		c.throttle()
		if err := c.driver.ScrollToBottom(); err != nil {
			return posts, fmt.Errorf("crawl %q: %w", keyword, err)
		}
	}

	log.Warn().Int("posts", len(posts)).Msg("round cap reached")
	return posts, nil
}

// throttle enforces the minimum delay plus jitter between scroll rounds,
// which both lets the feed load and keeps the request pattern organic.
func (c *Crawler) throttle() {
	if c.scrollDelay == 0 {
		return
	}
	elapsed := time.Since(c.lastScroll)
	jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
	wait := c.scrollDelay + jitter - elapsed
	if wait > 0 {
		time.Sleep(wait)
	}
	c.lastScroll = time.Now()
}

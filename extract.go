package xposts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// The platform reshuffles its markup regularly, so extraction runs an
// ordered list of structural strategies. The first one that yields at
// least one plausible record wins for the page; a page where every
// strategy comes up empty is an extraction miss, not an error, and the
// crawler folds it into stagnation counting.
type extractStrategy struct {
	name     string
	selector string
}

var extractStrategies = []extractStrategy{
	{"primary", `article[data-testid="tweet"]`},
	{"legacy-div", `div[data-testid="tweet"]`},
	{"role-article", `article[role="article"]`},
}

var (
	statusPathRe = regexp.MustCompile(`/([^/]+)/status/(\d+)`)
	nonNumericRe = regexp.MustCompile(`[^0-9.]`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
)

const maxTextLen = 500

// Extract parses the rendered feed HTML into post records. Missing fields
// are tolerated per record; a record without a resolvable status URL is
// skipped entirely.
func Extract(html string) ([]Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse feed html: %w", err)
	}

	now := time.Now().UTC()
	for _, strat := range extractStrategies {
		var posts []Post
		doc.Find(strat.selector).Each(func(_ int, s *goquery.Selection) {
			if p, ok := extractPost(s, now); ok {
				posts = append(posts, p)
			}
		})
		if len(posts) > 0 {
			return posts, nil
		}
	}
	return nil, nil
}

// extractPost pulls one record out of a post node. ok is false when no
// status link could be resolved.
func extractPost(s *goquery.Selection, now time.Time) (Post, bool) {
	href, found := s.Find(`a[href*="/status/"]`).First().Attr("href")
	if !found {
		return Post{}, false
	}
	postURL := normalizePostURL(href)

	m := statusPathRe.FindStringSubmatch(postURL)
	if m == nil {
		return Post{}, false
	}
	handle, id := m[1], m[2]

	p := Post{
		ID:           id,
		URL:          postURL,
		AuthorHandle: handle,
		AuthorURL:    "https://x.com/" + handle,
		CapturedAt:   now,
	}

	if name := s.Find(`div[data-testid="User-Name"] span`).First().Text(); name != "" {
		p.AuthorName = strings.TrimSpace(name)
	}
	if authorHref, ok := s.Find(`div[data-testid="User-Name"] a`).First().Attr("href"); ok {
		p.AuthorURL = normalizeAuthorURL(authorHref)
	}

	p.Likes, p.LikesParsed = parseCount(likeText(s))

	text := strings.TrimSpace(s.Find(`div[data-testid="tweetText"]`).First().Text())
	if r := []rune(text); len(r) > maxTextLen {
		text = string(r[:maxTextLen])
	}
	p.Text = text

	return p, true
}

// likeText finds the rendered like count, trying the current button layout
// before the older div one. The innermost span carries the number.
func likeText(s *goquery.Selection) string {
	for _, sel := range []string{
		`button[data-testid="like"] span`,
		`div[data-testid="like"] span`,
	} {
		spans := s.Find(sel)
		if spans.Length() > 0 {
			return strings.TrimSpace(spans.Last().Text())
		}
	}
	return ""
}

// parseCount converts an abbreviated human-readable count ("1.2K", "3M",
// "847") into an integer, rounding down. The second return is false when
// the text could not be parsed: the record is low-confidence and must not
// be ranked as genuinely zero-liked.
func parseCount(text string) (int, bool) {
	t := strings.ToUpper(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, ",", "")
	if t == "" {
		return 0, false
	}

	for _, m := range []struct {
		suffix string
		mult   float64
	}{
		{"K", 1e3},
		{"M", 1e6},
		{"B", 1e9},
	} {
		if !strings.Contains(t, m.suffix) {
			continue
		}
		num, err := strconv.ParseFloat(nonNumericRe.ReplaceAllString(t, ""), 64)
		if err != nil {
			return 0, false
		}
		return int(num * m.mult), true
	}

	digits := nonDigitRe.ReplaceAllString(t, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizePostURL makes a status href absolute, on the x.com domain, with
// the share suffix the platform uses on copied links.
func normalizePostURL(href string) string {
	u := href
	if !strings.HasPrefix(u, "http") {
		u = "https://x.com" + u
	}
	u = strings.Replace(u, "twitter.com", "x.com", 1)
	if !strings.Contains(u, "?s=") {
		u += "?s=20"
	}
	return u
}

func normalizeAuthorURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return strings.Replace(href, "twitter.com", "x.com", 1)
	}
	return "https://x.com" + href
}

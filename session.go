package xposts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadCookies reads a browser cookie-export file. A missing file returns
// ErrLoginRequired: the caller must pause for interactive login instead of
// treating it as a failure. A file that exists but cannot be parsed
// returns ErrMalformedCookies so the operator can fix it.
func LoadCookies(path string) (CookieSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no cookie file at %s: %w", path, ErrLoginRequired)
		}
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var set CookieSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCookies, path, err)
	}
	for i, c := range set {
		if c.Name == "" || c.Value == "" {
			return nil, fmt.Errorf("%w: cookie %d is missing name or value", ErrMalformedCookies, i)
		}
	}
	return set, nil
}

// SaveCookies writes the set back to a cookie-export file. Only called on
// explicit operator request, never implicitly after a run.
func SaveCookies(path string, set CookieSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ForDomain filters the set to cookies valid for the given domain, so
// injecting an export taken from another site is a no-op.
func (cs CookieSet) ForDomain(domain string) CookieSet {
	domain = strings.TrimPrefix(domain, ".")
	out := make(CookieSet, 0, len(cs))
	for _, c := range cs {
		d := strings.TrimPrefix(c.Domain, ".")
		if d == domain || strings.HasSuffix(domain, "."+d) || strings.HasSuffix(d, "."+domain) {
			out = append(out, c)
		}
	}
	return out
}

package xposts

import "sort"

// Rank deduplicates by post ID (first-seen occurrence wins, it usually
// carries the richest data), orders by like count descending, and
// truncates to target. The sort is stable so ties keep first-seen order
// and reruns over an identical feed snapshot are deterministic.
//
// Low-confidence records (unparsed like counts) rank after every confident
// record regardless of their nominal zero, to avoid promoting parse
// failures as real engagement.
func Rank(posts []Post, target int) []Post {
	seen := make(map[string]bool, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LikesParsed != out[j].LikesParsed {
			return out[i].LikesParsed
		}
		return out[i].Likes > out[j].Likes
	})

	if target > 0 && len(out) > target {
		out = out[:target]
	}
	return out
}

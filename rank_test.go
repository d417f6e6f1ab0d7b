package xposts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confident(id string, likes int) Post {
	return Post{ID: id, URL: "https://x.com/u/status/" + id, Likes: likes, LikesParsed: true}
}

func lowConfidence(id string) Post {
	return Post{ID: id, URL: "https://x.com/u/status/" + id, Likes: 0, LikesParsed: false}
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestRank_SortsByLikesDescending(t *testing.T) {
	t.Parallel()
	in := []Post{confident("a", 10), confident("b", 500), confident("c", 42)}
	got := Rank(in, 10)
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()
	in := []Post{confident("a", 7), confident("b", 7), confident("c", 7)}
	got := Rank(in, 10)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestRank_DeduplicatesKeepingFirstSeen(t *testing.T) {
	t.Parallel()
	first := confident("a", 5)
	first.Text = "rich first sighting"
	dup := confident("a", 999)

	got := Rank([]Post{first, confident("b", 3), dup}, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 5, got[0].Likes, "first-seen occurrence wins")
	assert.Equal(t, "rich first sighting", got[0].Text)
}

func TestRank_LowConfidenceAfterConfident(t *testing.T) {
	t.Parallel()
	in := []Post{lowConfidence("x"), confident("a", 0), confident("b", 3)}
	got := Rank(in, 10)
	require.Len(t, got, 3)
	// Even a genuinely zero-liked confident record outranks an unparsed one.
	assert.Equal(t, []string{"b", "a", "x"}, ids(got))
}

func TestRank_TruncatesToTarget(t *testing.T) {
	t.Parallel()
	in := []Post{confident("a", 4), confident("b", 3), confident("c", 2), confident("d", 1)}
	got := Rank(in, 2)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRank_Idempotent(t *testing.T) {
	t.Parallel()
	in := []Post{confident("a", 1), lowConfidence("b"), confident("c", 9), confident("a", 8)}
	once := Rank(in, 3)
	twice := Rank(once, 3)
	assert.Equal(t, once, twice)
}

func TestRank_EmptyAndSkippedIDs(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Rank(nil, 5))
	got := Rank([]Post{{URL: "no id"}, confident("a", 1)}, 5)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := []Post{confident("a", 1), confident("b", 9)}
	_ = Rank(in, 10)
	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}

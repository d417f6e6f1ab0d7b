package xposts

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []Post {
	ts := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return []Post{
		{
			ID: "111", URL: "https://x.com/alice/status/111?s=20",
			AuthorHandle: "alice", AuthorURL: "https://x.com/alice",
			Text: "top post", Likes: 1200, LikesParsed: true,
			Keyword: "clawbot", CapturedAt: ts,
		},
		{
			ID: "222", URL: "https://x.com/bob/status/222?s=20",
			AuthorHandle: "bob", AuthorURL: "https://x.com/bob",
			Likes: 0, LikesParsed: false,
			Keyword: "clawbot", CapturedAt: ts,
		},
	}
}

func TestFileSink_JSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "posts.json")
	sink := NewFileSink(path)
	posts := samplePosts()

	require.NoError(t, sink.Write(context.Background(), posts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Post
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, posts, got)
}

func TestFileSink_JSONOverwritesPerRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "posts.json")
	sink := NewFileSink(path)

	require.NoError(t, sink.Write(context.Background(), samplePosts()))
	require.NoError(t, sink.Write(context.Background(), samplePosts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Post
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 1, "rerun overwrites, never appends")
}

func TestFileSink_CSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "posts.csv")
	sink := NewFileSink(path)

	require.NoError(t, sink.Write(context.Background(), samplePosts()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"alice", "https://x.com/alice", "https://x.com/alice/status/111?s=20", "1200", "top post", "clawbot"}, rows[1])
	assert.Equal(t, "?", rows[2][3], "low-confidence count is not rendered as a real zero")
}

// stubSink records what it was asked to write.
type stubSink struct {
	name string
	err  error
	got  [][]Post
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Write(_ context.Context, posts []Post) error {
	s.got = append(s.got, posts)
	return s.err
}

func TestWriteWithFallback(t *testing.T) {
	t.Parallel()
	posts := samplePosts()

	t.Run("primary succeeds", func(t *testing.T) {
		t.Parallel()
		primary := &stubSink{name: "sheets"}
		fallback := &stubSink{name: "file"}
		err := WriteWithFallback(context.Background(), primary, fallback, zerolog.Nop(), posts)
		require.NoError(t, err)
		assert.Len(t, primary.got, 1)
		assert.Empty(t, fallback.got, "fallback untouched")
	})

	t.Run("destination unavailable falls back with identical set", func(t *testing.T) {
		t.Parallel()
		primary := &stubSink{name: "sheets", err: fmt.Errorf("quota: %w", ErrDestinationUnavailable)}
		fallback := &stubSink{name: "file"}
		err := WriteWithFallback(context.Background(), primary, fallback, zerolog.Nop(), posts)
		require.NoError(t, err)
		require.Len(t, fallback.got, 1)
		assert.Equal(t, posts, fallback.got[0], "fallback receives the exact same result set")
	})

	t.Run("other errors propagate without fallback", func(t *testing.T) {
		t.Parallel()
		primary := &stubSink{name: "sheets", err: errors.New("boom")}
		fallback := &stubSink{name: "file"}
		err := WriteWithFallback(context.Background(), primary, fallback, zerolog.Nop(), posts)
		require.Error(t, err)
		assert.Empty(t, fallback.got)
	})

	t.Run("no fallback configured", func(t *testing.T) {
		t.Parallel()
		primary := &stubSink{name: "file", err: fmt.Errorf("gone: %w", ErrDestinationUnavailable)}
		err := WriteWithFallback(context.Background(), primary, nil, zerolog.Nop(), posts)
		assert.ErrorIs(t, err, ErrDestinationUnavailable)
	})
}

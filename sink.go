package xposts

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Sink writes a ranked result set to a tabular destination. Writes are
// idempotent per run: the same result set overwrites, never appends.
type Sink interface {
	Name() string
	Write(ctx context.Context, posts []Post) error
}

// FileSink writes the result set to a local file: a JSON array of records,
// or CSV rows when the path ends in ".csv".
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (f *FileSink) Name() string { return "file" }

func (f *FileSink) Write(_ context.Context, posts []Post) error {
	if strings.HasSuffix(strings.ToLower(f.Path), ".csv") {
		return f.writeCSV(posts)
	}
	return f.writeJSON(posts)
}

func (f *FileSink) writeJSON(posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

func (f *FileSink) writeCSV(posts []Post) error {
	file, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range posts {
		if err := w.Write(exportRow(p)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// exportHeader and exportRow define the tabular shape shared by the CSV
// file and the spreadsheet destination.
var exportHeader = []string{"Author", "Author URL", "Post Link", "Likes", "Text", "Keyword"}

func exportRow(p Post) []string {
	likes := strconv.Itoa(p.Likes)
	if !p.LikesParsed {
		likes = "?"
	}
	return []string{p.AuthorHandle, p.AuthorURL, p.URL, likes, p.Text, p.Keyword}
}

// WriteWithFallback writes to the primary sink and, only when the
// destination itself is unavailable, hands the exact same result set to
// the fallback so no collected record is ever dropped. Any other write
// error propagates unchanged.
func WriteWithFallback(ctx context.Context, primary, fallback Sink, log zerolog.Logger, posts []Post) error {
	err := primary.Write(ctx, posts)
	if err == nil {
		log.Info().Str("sink", primary.Name()).Int("posts", len(posts)).Msg("results exported")
		return nil
	}
	if fallback == nil || !errors.Is(err, ErrDestinationUnavailable) {
		return fmt.Errorf("export via %s: %w", primary.Name(), err)
	}

	log.Warn().Err(err).
		Str("sink", primary.Name()).
		Str("fallback", fallback.Name()).
		Msg("destination unavailable, falling back")

	if err := fallback.Write(ctx, posts); err != nil {
		return fmt.Errorf("export via fallback %s: %w", fallback.Name(), err)
	}
	log.Info().Str("sink", fallback.Name()).Int("posts", len(posts)).Msg("results exported")
	return nil
}

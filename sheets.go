package xposts

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink writes the result set to a Google Sheets worksheet using a
// service-account key file. Every credential, quota, or network failure is
// reported as ErrDestinationUnavailable so the caller falls back to the
// local file sink instead of losing the results.
type SheetsSink struct {
	credsPath     string
	spreadsheetID string
	title         string
	sheetName     string
	log           zerolog.Logger

	// endpoint overrides the API base URL in tests; it skips auth.
	endpoint string
}

func NewSheetsSink(cfg Config) *SheetsSink {
	return &SheetsSink{
		credsPath:     cfg.CredentialsPath,
		spreadsheetID: cfg.SpreadsheetID,
		title:         cfg.SpreadsheetName,
		sheetName:     cfg.SheetName,
		log:           zerolog.Nop(),
	}
}

// WithLogger sets the structured logger used during writes.
func (s *SheetsSink) WithLogger(log zerolog.Logger) *SheetsSink {
	s.log = log
	return s
}

func (s *SheetsSink) Name() string { return "sheets" }

// Write ensures the worksheet exists, clears it, and writes the header
// plus one row per post. Rerunning with the same result set overwrites.
func (s *SheetsSink) Write(ctx context.Context, posts []Post) error {
	svc, err := s.service(ctx)
	if err != nil {
		return err
	}

	id := s.spreadsheetID
	if id == "" {
		id, err = s.createSpreadsheet(ctx, svc)
		if err != nil {
			return err
		}
	} else if err := s.ensureSheet(ctx, svc, id); err != nil {
		return err
	}

	rng := fmt.Sprintf("'%s'", s.sheetName)
	if _, err := svc.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: clear sheet: %v", ErrDestinationUnavailable, err)
	}

	vr := &sheets.ValueRange{Values: buildRows(posts)}
	_, err = svc.Spreadsheets.Values.Update(id, rng+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: update sheet: %v", ErrDestinationUnavailable, err)
	}

	s.log.Info().Str("spreadsheet", id).Str("sheet", s.sheetName).Int("posts", len(posts)).
		Msg("wrote result set")
	return nil
}

func (s *SheetsSink) service(ctx context.Context) (*sheets.Service, error) {
	if s.endpoint != "" {
		svc, err := sheets.NewService(ctx,
			option.WithEndpoint(s.endpoint),
			option.WithoutAuthentication())
		if err != nil {
			return nil, fmt.Errorf("%w: create sheets client: %v", ErrDestinationUnavailable, err)
		}
		return svc, nil
	}

	data, err := os.ReadFile(s.credsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials %s: %v", ErrDestinationUnavailable, s.credsPath, err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account key: %v", ErrDestinationUnavailable, err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets client: %v", ErrDestinationUnavailable, err)
	}
	return svc, nil
}

// createSpreadsheet provisions a fresh spreadsheet with the configured
// worksheet when no spreadsheet ID was supplied.
func (s *SheetsSink) createSpreadsheet(ctx context.Context, svc *sheets.Service) (string, error) {
	sp, err := svc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: s.title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: s.sheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: create spreadsheet: %v", ErrDestinationUnavailable, err)
	}
	s.log.Info().Str("spreadsheet", sp.SpreadsheetId).Str("url", sp.SpreadsheetUrl).
		Msg("created spreadsheet")
	return sp.SpreadsheetId, nil
}

// ensureSheet adds the configured worksheet to an existing spreadsheet if
// it is not already there.
func (s *SheetsSink) ensureSheet(ctx context.Context, svc *sheets.Service, id string) error {
	sp, err := svc.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: get spreadsheet %s: %v", ErrDestinationUnavailable, id, err)
	}
	for _, sh := range sp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.sheetName},
			}},
		},
	}
	if _, err := svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: add sheet %q: %v", ErrDestinationUnavailable, s.sheetName, err)
	}
	return nil
}

// buildRows renders the result set as sheet rows, header first, matching
// the CSV column layout.
func buildRows(posts []Post) [][]interface{} {
	rows := make([][]interface{}, 0, len(posts)+1)

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	rows = append(rows, header)

	for _, p := range posts {
		cells := exportRow(p)
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		rows = append(rows, row)
	}
	return rows
}

package logbook

import (
	"context"
	"fmt"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends one spreadsheet row per turn.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetRange    string
}

// NewSheetsSink authenticates with the credentials file when one is set and
// falls back to the API key. Extra options are appended last.
func NewSheetsSink(ctx context.Context, cfg settings.SheetsConfig, extra ...option.ClientOption) (*SheetsSink, error) {
	opts := make([]option.ClientOption, 0, len(extra)+1)
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &SheetsSink{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetRange: cfg.Range()}, nil
}

func (s *SheetsSink) Name() string { return "google-sheets" }

func (s *SheetsSink) Deliver(ctx context.Context, rec turnlog.Record) error {
	values := &sheets.ValueRange{Values: [][]interface{}{sheetRow(rec)}}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetRange, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// sheetRow leaves absent or zero metadata cells empty.
func sheetRow(rec turnlog.Record) []interface{} {
	row := []interface{}{
		rec.ID,
		isoTimestamp(rec.Timestamp),
		rec.UserInput,
		rec.AIResponse,
		rec.SessionID,
		"", "", "",
	}
	if rec.Metadata != nil {
		if rec.Metadata.ProcessingTimeMs != 0 {
			row[5] = rec.Metadata.ProcessingTimeMs
		}
		if tokens := rec.Metadata.Tokens(); tokens != 0 {
			row[6] = tokens
		}
		if rec.Metadata.Model != "" {
			row[7] = rec.Metadata.Model
		}
	}
	return row
}

package logbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

const defaultAirtableBaseURL = "https://api.airtable.com/v0"

// AirtableSink creates one table row per turn.
type AirtableSink struct {
	cfg     settings.AirtableConfig
	baseURL string
	client  *http.Client
}

func NewAirtableSink(cfg settings.AirtableConfig, baseURL string, client *http.Client) *AirtableSink {
	if baseURL == "" {
		baseURL = defaultAirtableBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AirtableSink{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *AirtableSink) Name() string { return "airtable" }

func (s *AirtableSink) Deliver(ctx context.Context, rec turnlog.Record) error {
	body, err := json.Marshal(map[string]any{"fields": airtableFields(rec)})
	if err != nil {
		return fmt.Errorf("airtable: marshal record: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, s.cfg.BaseID, s.cfg.TableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("airtable: unexpected status %s", resp.Status)
	}
	return nil
}

// airtableFields uses null for absent or zero metadata values.
func airtableFields(rec turnlog.Record) map[string]any {
	fields := map[string]any{
		"ID":              rec.ID,
		"Timestamp":       isoTimestamp(rec.Timestamp),
		"User Input":      rec.UserInput,
		"AI Response":     rec.AIResponse,
		"Session ID":      rec.SessionID,
		"Processing Time": nil,
		"Tokens Used":     nil,
		"Model":           nil,
	}
	if rec.Metadata != nil {
		if rec.Metadata.ProcessingTimeMs != 0 {
			fields["Processing Time"] = rec.Metadata.ProcessingTimeMs
		}
		if tokens := rec.Metadata.Tokens(); tokens != 0 {
			fields["Tokens Used"] = tokens
		}
		if rec.Metadata.Model != "" {
			fields["Model"] = rec.Metadata.Model
		}
	}
	return fields
}

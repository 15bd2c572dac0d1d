package logbook

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

// Format names an export encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown export format")

var csvHeader = []string{"ID", "Timestamp", "User Input", "AI Response", "Session ID", "Processing Time", "Tokens Used", "Model"}

// ParseFormat accepts text/txt, json and csv in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Extension is the file suffix for the format.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename returns conversation_logs_<YYYY-MM-DD>.<ext> for the UTC date of now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("conversation_logs_%s.%s", now.UTC().Format("2006-01-02"), f.Extension())
}

// WriteExport encodes records to w.
func WriteExport(w io.Writer, f Format, records []turnlog.Record) error {
	switch f {
	case FormatText:
		blocks := make([]string, 0, len(records))
		for _, rec := range records {
			blocks = append(blocks, textBlock(rec))
		}
		_, err := io.WriteString(w, strings.Join(blocks, "\n"))
		return err
	case FormatJSON:
		if records == nil {
			records = []turnlog.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, rec := range records {
			if err := cw.Write(csvRow(rec)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func textBlock(rec turnlog.Record) string {
	var b strings.Builder
	b.WriteString("=== Conversation Log ===\n")
	fmt.Fprintf(&b, "ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "Timestamp: %s\n", rec.Timestamp.Local().Format("1/2/2006, 3:04:05 PM"))
	fmt.Fprintf(&b, "Session: %s\n\n", rec.SessionID)
	fmt.Fprintf(&b, "USER: %s\n\n", rec.UserInput)
	fmt.Fprintf(&b, "AI: %s\n\n", rec.AIResponse)
	if rec.Metadata != nil {
		meta, _ := json.MarshalIndent(rec.Metadata, "", "  ")
		fmt.Fprintf(&b, "Metadata: %s", meta)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")
	return b.String()
}

func csvRow(rec turnlog.Record) []string {
	row := []string{rec.ID, isoTimestamp(rec.Timestamp), rec.UserInput, rec.AIResponse, rec.SessionID, "", "", ""}
	if rec.Metadata != nil {
		if rec.Metadata.ProcessingTimeMs != 0 {
			row[5] = strconv.FormatInt(rec.Metadata.ProcessingTimeMs, 10)
		}
		if tokens := rec.Metadata.Tokens(); tokens != 0 {
			row[6] = strconv.Itoa(tokens)
		}
		row[7] = rec.Metadata.Model
	}
	return row
}

func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

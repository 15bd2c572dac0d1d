package logbook

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"TXT": FormatText, "text": FormatText, "json": FormatJSON, " CSV ": FormatCSV} {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "conversation_logs_2024-05-01.txt", Filename(FormatText, now))
	assert.Equal(t, "conversation_logs_2024-05-01.json", Filename(FormatJSON, now))
	assert.Equal(t, "conversation_logs_2024-05-01.csv", Filename(FormatCSV, now))
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatJSON, []turnlog.Record{sampleRecord("log_1", "s1", "hi", "there", 2)}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "log_1", decoded[0]["id"])
	assert.Equal(t, "there", decoded[0]["aiResponse"])
	meta := decoded[0]["metadata"].(map[string]any)
	assert.EqualValues(t, 42, meta["processingTime"])
	assert.EqualValues(t, 2, meta["tokensUsed"])
}

func TestWriteExportJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatJSON, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestWriteExportCSV(t *testing.T) {
	rec := sampleRecord("log_1", "s1", "hi, there", "reply", 0)
	rec.Metadata.Model = ""

	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatCSV, []turnlog.Record{rec}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"log_1", "2024-05-01T10:30:00.000Z", "hi, there", "reply", "s1", "42", "", ""}, rows[1])
}

func TestWriteExportText(t *testing.T) {
	withMeta := sampleRecord("log_1", "s1", "hi", "there", 1)
	withoutMeta := sampleRecord("log_2", "s1", "bye", "later", 1)
	withoutMeta.Metadata = nil

	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatText, []turnlog.Record{withMeta, withoutMeta}))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "=== Conversation Log ==="))
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("=", 50)+"\n"))
	assert.Contains(t, out, "ID: log_1\n")
	assert.Contains(t, out, "Session: s1\n\nUSER: hi\n\nAI: there\n\n")
	assert.Equal(t, 1, strings.Count(out, "Metadata: {"))
}

package settings

import (
	"errors"
	"path/filepath"
)

// RedactedSecret replaces API keys in settings shown to clients. Sending it
// back on update keeps the stored key.
const RedactedSecret = "********"

// ErrTranscriptPath rejects transcript names that leave the transcript directory.
var ErrTranscriptPath = errors.New("textExportPath must be a relative file name inside the transcript directory")

// AirtableConfig identifies the Airtable table that receives turn records.
type AirtableConfig struct {
	BaseID  string `json:"baseId" yaml:"baseId"`
	TableID string `json:"tableId" yaml:"tableId"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`
}

// Valid reports whether every required field is present.
func (c *AirtableConfig) Valid() bool {
	return c != nil && c.BaseID != "" && c.TableID != "" && c.APIKey != ""
}

// SheetsConfig identifies the Google spreadsheet that receives turn records.
// Either APIKey or CredentialsFile authenticates the append.
type SheetsConfig struct {
	SpreadsheetID   string `json:"spreadsheetId" yaml:"spreadsheetId"`
	APIKey          string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	CredentialsFile string `json:"credentialsFile,omitempty" yaml:"credentialsFile,omitempty"`
	SheetRange      string `json:"sheetRange,omitempty" yaml:"sheetRange,omitempty"`
}

// Valid reports whether the spreadsheet can be addressed and authenticated.
func (c *SheetsConfig) Valid() bool {
	return c != nil && c.SpreadsheetID != "" && (c.APIKey != "" || c.CredentialsFile != "")
}

// Range returns the target range, defaulting to the first sheet.
func (c *SheetsConfig) Range() string {
	if c == nil || c.SheetRange == "" {
		return "Sheet1"
	}
	return c.SheetRange
}

// Settings selects which sinks receive completed turns.
type Settings struct {
	EnableLocalPersistence bool            `json:"enableLocalPersistence" yaml:"enableLocalPersistence"`
	EnableTextExport       bool            `json:"enableTextExport" yaml:"enableTextExport"`
	EnableAirtable         bool            `json:"enableRemoteSinkA" yaml:"enableRemoteSinkA"`
	EnableGoogleSheets     bool            `json:"enableRemoteSinkB" yaml:"enableRemoteSinkB"`
	Airtable               *AirtableConfig `json:"remoteSinkAConfig,omitempty" yaml:"remoteSinkAConfig,omitempty"`
	GoogleSheets           *SheetsConfig   `json:"remoteSinkBConfig,omitempty" yaml:"remoteSinkBConfig,omitempty"`
	TextExportPath         string          `json:"textExportPath,omitempty" yaml:"textExportPath,omitempty"`
}

// Default enables local persistence only.
func Default() Settings {
	return Settings{EnableLocalPersistence: true}
}

// TranscriptPath returns the text transcript name, relative to the
// transcript directory.
func (s Settings) TranscriptPath() string {
	if s.TextExportPath == "" {
		return "conversation_logs.txt"
	}
	return s.TextExportPath
}

// TranscriptFile resolves the transcript inside dir. Absolute names and names
// that climb out of dir are refused.
func (s Settings) TranscriptFile(dir string) (string, error) {
	name := s.TranscriptPath()
	if !filepath.IsLocal(name) {
		return "", ErrTranscriptPath
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name), nil
}

// Validate checks the fields a client may not set freely.
func (s Settings) Validate() error {
	_, err := s.TranscriptFile(".")
	return err
}

// Redacted returns a copy safe to show to clients.
func (s Settings) Redacted() Settings {
	if s.Airtable != nil {
		a := *s.Airtable
		a.APIKey = redact(a.APIKey)
		s.Airtable = &a
	}
	if s.GoogleSheets != nil {
		g := *s.GoogleSheets
		g.APIKey = redact(g.APIKey)
		s.GoogleSheets = &g
	}
	return s
}

// KeepSecrets fills keys sent back as RedactedSecret from prev.
func (s Settings) KeepSecrets(prev Settings) Settings {
	if s.Airtable != nil && s.Airtable.APIKey == RedactedSecret {
		a := *s.Airtable
		a.APIKey = ""
		if prev.Airtable != nil {
			a.APIKey = prev.Airtable.APIKey
		}
		s.Airtable = &a
	}
	if s.GoogleSheets != nil && s.GoogleSheets.APIKey == RedactedSecret {
		g := *s.GoogleSheets
		g.APIKey = ""
		if prev.GoogleSheets != nil {
			g.APIKey = prev.GoogleSheets.APIKey
		}
		s.GoogleSheets = &g
	}
	return s
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return RedactedSecret
}

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), cfg)
	assert.True(t, cfg.EnableLocalPersistence)
	assert.False(t, cfg.EnableAirtable)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)

	want := settings.Settings{
		EnableLocalPersistence: true,
		EnableGoogleSheets:     true,
		GoogleSheets:           &settings.SheetsConfig{SpreadsheetID: "sheet-1", APIKey: "key"},
		TextExportPath:         "out.txt",
	}
	require.NoError(t, store.Save(want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "enableRemoteSinkB: true")
	assert.Contains(t, string(raw), "spreadsheetId: sheet-1")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enableTextExport: true\n"), 0o644))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.True(t, got.EnableLocalPersistence)
	assert.True(t, got.EnableTextExport)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enableTextExport: [oops"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

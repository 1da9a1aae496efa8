package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalogJSON = `{
  "properties": [
    {"property": {"id": "1", "name": "A", "address": {"full": "1-1, Minato-ku, Tokyo"}}},
    {"property": {"id": "2", "name": "B", "address": {"full": "2-2, Meguro-ku, Tokyo"}}}
  ]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	records, err := Load(writeCatalog(t, sampleCatalogJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[1].Name != "B" {
		t.Errorf("records not decoded in order: %+v", records)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load(writeCatalog(t, "{not json")); err == nil {
		t.Error("invalid JSON should fail")
	}
}

func TestLoad_RecordWithoutID(t *testing.T) {
	content := `{"properties": [{"property": {"name": "no id"}}]}`
	if _, err := Load(writeCatalog(t, content)); err == nil {
		t.Error("record without id should fail")
	}
}

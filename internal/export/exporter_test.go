package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"yt-extract-api/pkg/models"
)

func sampleRecords() []*models.ExtractionRecord {
	return []*models.ExtractionRecord{
		{
			VideoID:    "dQw4w9WgXcQ",
			URL:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Endpoint:   "download",
			Profile:    models.ClientAndroid,
			Outcome:    "success",
			Quality:    models.QualityHighest,
			Format:     models.FormatMP4,
			DurationMs: 1200,
			CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			VideoID:   "aaaaaaaaaaa",
			URL:       "https://www.youtube.com/watch?v=aaaaaaaaaaa",
			Endpoint:  "info",
			Outcome:   "sign_in_required",
			Error:     "sign_in_required: This video requires sign-in verification.",
			CreatedAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"csv", true},
		{"xlsx", true},
		{"json", true},
		{"txt", false},
		{"", false},
	}

	for _, test := range tests {
		if _, ok := ParseFormat(test.input); ok != test.valid {
			t.Errorf("ParseFormat(%q): expected valid=%t", test.input, test.valid)
		}
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter().Export(&buf, FormatCSV, sampleRecords()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Expected parseable CSV, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Video ID" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "dQw4w9WgXcQ" || rows[1][4] != "success" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if !strings.Contains(rows[2][9], "sign-in") {
		t.Errorf("Expected error column populated, got %v", rows[2])
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter().Export(&buf, FormatJSON, sampleRecords()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var payload struct {
		Count   int                        `json:"count"`
		Records []*models.ExtractionRecord `json:"records"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("Expected parseable JSON, got %v", err)
	}
	if payload.Count != 2 || len(payload.Records) != 2 {
		t.Errorf("Expected 2 records, got count=%d len=%d", payload.Count, len(payload.Records))
	}
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter().Export(&buf, FormatXLSX, sampleRecords()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// XLSX files are zip archives
	if buf.Len() == 0 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("Expected a zip-framed XLSX payload")
	}
}

func TestExportUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter().Export(&buf, Format("txt"), nil); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFormatOptions(t *testing.T) {
	if FormatOptions() != "csv, xlsx, json" {
		t.Errorf("Unexpected format options: %s", FormatOptions())
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatCSV) != "text/csv" {
		t.Error("Unexpected CSV content type")
	}
	if !strings.Contains(ContentType(FormatXLSX), "spreadsheet") {
		t.Error("Unexpected XLSX content type")
	}
}

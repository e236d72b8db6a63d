// Package export renders extraction history in downloadable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"yt-extract-api/pkg/models"
)

// Format represents an export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// SupportedFormats returns the export formats the service can render
func SupportedFormats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatJSON}
}

// FormatOptions renders the supported formats for error messages
func FormatOptions() string {
	formats := SupportedFormats()
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// ParseFormat validates an export format query value
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, true
	}
	return "", false
}

// ContentType returns the response content type for a format
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

var columns = []string{
	"Video ID",
	"URL",
	"Endpoint",
	"Profile",
	"Outcome",
	"Cached",
	"Quality",
	"Format",
	"Duration (ms)",
	"Error",
	"Created At",
}

const dateFormat = "2006-01-02 15:04:05"

// Exporter writes extraction history records to an output stream
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders the records in the given format
func (e *Exporter) Export(w io.Writer, format Format, records []*models.ExtractionRecord) error {
	switch format {
	case FormatCSV:
		return e.exportCSV(w, records)
	case FormatXLSX:
		return e.exportXLSX(w, records)
	case FormatJSON:
		return e.exportJSON(w, records)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func (e *Exporter) exportCSV(w io.Writer, records []*models.ExtractionRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

func (e *Exporter) exportXLSX(w io.Writer, records []*models.ExtractionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Extractions"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 12,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, column := range columns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, column)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	columnWidths := map[string]float64{
		"A": 15, // Video ID
		"B": 50, // URL
		"C": 12, // Endpoint
		"D": 12, // Profile
		"E": 18, // Outcome
		"F": 10, // Cached
		"G": 12, // Quality
		"H": 10, // Format
		"I": 15, // Duration
		"J": 50, // Error
		"K": 20, // Created At
	}
	for col, width := range columnWidths {
		f.SetColWidth(sheetName, col, col, width)
	}

	for i, record := range records {
		for j, value := range recordToRow(record) {
			cell := fmt.Sprintf("%c%d", 'A'+j, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	endRange := fmt.Sprintf("%c%d", 'A'+len(columns)-1, len(records)+1)
	f.AutoFilter(sheetName, "A1:"+endRange, []excelize.AutoFilterOptions{})

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true,
		Split:  false,
		XSplit: 0,
		YSplit: 1,
	})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

func (e *Exporter) exportJSON(w io.Writer, records []*models.ExtractionRecord) error {
	exportData := struct {
		ExportedAt time.Time                  `json:"exported_at"`
		Count      int                        `json:"count"`
		Records    []*models.ExtractionRecord `json:"records"`
	}{
		ExportedAt: time.Now(),
		Count:      len(records),
		Records:    records,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func recordToRow(record *models.ExtractionRecord) []string {
	return []string{
		record.VideoID,
		record.URL,
		record.Endpoint,
		string(record.Profile),
		record.Outcome,
		fmt.Sprintf("%t", record.Cached),
		string(record.Quality),
		string(record.Format),
		fmt.Sprintf("%d", record.DurationMs),
		record.Error,
		record.CreatedAt.Format(dateFormat),
	}
}

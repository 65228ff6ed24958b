// package formatter exports sync ledger records to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// DefaultBaseName is the file name stem used when no output path is given.
const DefaultBaseName = "sync_records"

// ParseFormat maps user input (csv, md, markdown, txt, text, json) to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension, including the dot, for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	default:
		return ".csv"
	}
}

// FormatDue renders a record's due date: a bare date for all-day records, date and UTC time otherwise.
func FormatDue(r *models.SyncRecord) string {
	if r.AllDay {
		return r.DueDate.UTC().Format(time.DateOnly)
	}
	return r.DueDate.UTC().Format("2006-01-02 15:04 MST")
}

// ExportToCSV converts records to CSV with columns: Task ID, Task Name, Due, All Day, Event ID, Synced At
func ExportToCSV(records []*models.SyncRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Task ID", "Task Name", "Due", "All Day", "Event ID", "Synced At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.TaskID,
			r.TaskName,
			FormatDue(r),
			strconv.FormatBool(r.AllDay),
			r.EventID,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts records to a Markdown table headed by the sync tag.
func ExportToMarkdown(records []*models.SyncRecord, tag string) ([]byte, error) {
	var buf bytes.Buffer

	if tag != "" {
		fmt.Fprintf(&buf, "# Tasks tagged %q\n\n", tag)
	} else {
		buf.WriteString("# Synced tasks\n\n")
	}
	fmt.Fprintf(&buf, "**Records**: %d\n\n", len(records))

	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Task | Due | Event |\n")
	buf.WriteString("| --- | --- | --- |\n")
	for _, r := range records {
		due := FormatDue(r)
		if r.AllDay {
			due += " (all day)"
		}
		fmt.Fprintf(&buf, "| %s | %s | `%s` |\n", escapeCell(r.TaskName), due, r.EventID)
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteText streams records as numbered plain text lines to w.
func WriteText(w io.Writer, records []*models.SyncRecord) error {
	if _, err := fmt.Fprintf(w, "Records: %d\n\n", len(records)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		if _, err := fmt.Fprintf(w, "%d. %s (due %s) -> %s\n", i+1, r.TaskName, FormatDue(r), r.EventID); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.TaskID, err)
		}
	}
	return nil
}

// ExportToText converts records to plain text format
func ExportToText(records []*models.SyncRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteText(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportToJSON converts records to indented JSON; an empty ledger encodes as [].
func ExportToJSON(records []*models.SyncRecord) ([]byte, error) {
	if records == nil {
		records = []*models.SyncRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders records in format f.
func Export(records []*models.SyncRecord, f Format, tag string) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown:
		return ExportToMarkdown(records, tag)
	case FormatText:
		return ExportToText(records)
	case FormatJSON:
		return ExportToJSON(records)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteExport renders records in format f and writes them to w.
func WriteExport(w io.Writer, records []*models.SyncRecord, f Format, tag string) error {
	data, err := Export(records, f, tag)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExportFile writes records to path in format f.
//
// Defaults to sync_records with the format's extension in the working directory.
func WriteExportFile(records []*models.SyncRecord, f Format, tag, path string) (string, error) {
	if path == "" {
		path = DefaultBaseName + f.Extension()
	}

	data, err := Export(records, f, tag)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ExportMode controls how successive rows reach the export file.
type ExportMode int

const (
	// TruncateEach reopens and truncates the file for every row, so the file
	// only ever holds the header and the last row written.
	TruncateEach ExportMode = iota

	// AppendRows truncates on the first row of a report and appends the rest.
	AppendRows
)

func (m ExportMode) String() string {
	if m == AppendRows {
		return "append"
	}
	return "truncate"
}

// ParseExportMode converts a config value into an ExportMode.
func ParseExportMode(s string) (ExportMode, error) {
	switch s {
	case "", "truncate":
		return TruncateEach, nil
	case "append":
		return AppendRows, nil
	default:
		return 0, fmt.Errorf("unknown export mode %q (want truncate or append)", s)
	}
}

// ExportHeader is the first line of every export file.
var ExportHeader = []string{
	"Month",
	"Average Wind Speed(stdev)",
	"Average Ambient Temperature(stdev)",
	"Solar Radiation",
}

// Exporter writes combined report rows to a CSV file. No file handle is held
// between calls.
type Exporter struct {
	path string
	mode ExportMode
}

// NewExporter creates an exporter for path.
func NewExporter(path string, mode ExportMode) *Exporter {
	return &Exporter{path: path, mode: mode}
}

// Path returns the export file path.
func (e *Exporter) Path() string { return e.path }

// WriteRow opens the export file, writes the header when the file is being
// replaced, writes row, and closes the file. first marks the first row of a
// report invocation.
func (e *Exporter) WriteRow(row []string, first bool) (err error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	header := true
	if e.mode == AppendRows && !first {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		header = false
	}

	f, err := os.OpenFile(e.path, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if header {
		if err := w.Write(ExportHeader); err != nil {
			return fmt.Errorf("writing export header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing export row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing export file: %w", err)
	}
	return nil
}

// Package dataset serializes observation rows to flat files. The output
// format is chosen by file extension: ".csv" for spreadsheet-friendly
// output, ".json" for structured consumers.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/synoptic"
)

// csvHeader is the column order for CSV output.
var csvHeader = []string{"station_id", "variable", "time", "value"}

// WriteFile writes rows to path, dispatching on the file extension.
// Supported extensions: .csv, .json.
func WriteFile(path string, rows []synoptic.Observation) error {
	var write func(io.Writer, []synoptic.Observation) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		write = WriteCSV
	case ".json":
		write = WriteJSON
	default:
		return fmt.Errorf("unsupported output extension %q (want .csv or .json)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f, rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// WriteCSV writes rows as CSV with a header line. Times are RFC 3339 UTC.
func WriteCSV(w io.Writer, rows []synoptic.Observation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.StationID,
			row.Variable,
			row.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(row.Value, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []synoptic.Observation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"time", "hours", "value", "unit"}

// WriteCSV writes readings with a header row. Times are RFC 3339 and values
// keep two decimals.
func WriteCSV(w io.Writer, readings []Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range readings {
		rec := []string{
			r.Time.Format(time.RFC3339),
			strconv.FormatFloat(r.Hours, 'f', 4, 64),
			strconv.FormatFloat(r.Value, 'f', 2, 64),
			string(r.Unit),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON export of one digitized screenshot.
type Document struct {
	Source   string    `json:"source"`
	Summary  *Summary  `json:"summary,omitempty"`
	Readings []Reading `json:"readings"`
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

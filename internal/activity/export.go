package activity

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"id", "timestamp", "type", "category", "action", "description",
	"status", "severity", "user", "ip", "resource", "duration_ms",
}

// WriteJSON writes the full result, stats and active filters included.
func WriteJSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per record under a fixed header. Metadata is not exported.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		dur := ""
		if r.DurationMs != nil {
			dur = strconv.FormatInt(*r.DurationMs, 10)
		}
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339),
			string(r.Type),
			r.Category,
			r.Action,
			r.Description,
			string(r.Status),
			string(r.Severity),
			r.User,
			r.IP,
			r.Resource,
			dur,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

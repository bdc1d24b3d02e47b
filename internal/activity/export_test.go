package activity

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	recs := []Record{
		{ID: "1", Type: TypeAuth, Action: "User Login", Description: "signed in, ok", Timestamp: testNow, Status: StatusSuccess, Severity: SeverityLow, User: "a@b.com", DurationMs: ms(42)},
		{ID: "2", Type: TypeSystem, Action: "Backup", Timestamp: testNow, Status: StatusInfo, Severity: SeverityLow},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][5] != "signed in, ok" || rows[1][11] != "42" || rows[2][11] != "" {
		t.Fatalf("unexpected record rows %v", rows[1:])
	}
	if rows[1][1] != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected timestamp %q", rows[1][1])
	}
}

func TestWriteJSON(t *testing.T) {
	res := Apply([]Record{{ID: "1", Status: StatusError, User: "u"}}, Criteria{Status: StatusError}, testNow)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	stats := back["stats"].(map[string]any)
	if stats["error_count"].(float64) != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if _, ok := stats["average_response_time"]; ok {
		t.Fatalf("expected average omitted without durations")
	}
}

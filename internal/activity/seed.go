package activity

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

type seedTemplate struct {
	typ      Type
	category string
	action   string
	desc     string
	resource string
}

var seedTemplates = []seedTemplate{
	{TypeAuth, "Authentication", "User Login", "User signed in to the dashboard", "/session"},
	{TypeAuth, "Authentication", "Failed Login", "Invalid credentials supplied", "/session"},
	{TypeUser, "User Management", "Profile Updated", "User changed profile details", "/users"},
	{TypeUser, "User Management", "Role Changed", "User role was modified", "/users/roles"},
	{TypeSystem, "System", "Backup Completed", "Nightly backup finished", "/system/backup"},
	{TypeSystem, "System", "Config Reloaded", "Configuration reloaded from disk", "/system/config"},
	{TypeSecurity, "Security", "Suspicious Activity", "Unusual request pattern detected", "/security"},
	{TypeSecurity, "Security", "Permission Denied", "Access to a restricted resource was denied", "/admin"},
	{TypeData, "Data", "Export Generated", "Report exported to CSV", "/reports/export"},
	{TypeData, "Data", "Record Deleted", "A data record was removed", "/data/records"},
	{TypeAPI, "API", "API Request", "External API call served", "/api/v1/metrics"},
	{TypeAPI, "API", "Rate Limited", "Client exceeded request quota", "/api/v1/search"},
}

var (
	seedUsers      = []string{"admin@example.com", "jane@example.com", "john@example.com", "ops@example.com", "support@example.com", "guest@example.com"}
	seedStatuses   = []Status{StatusSuccess, StatusSuccess, StatusSuccess, StatusInfo, StatusWarning, StatusError}
	seedSeverities = []Severity{SeverityLow, SeverityLow, SeverityMedium, SeverityMedium, SeverityHigh, SeverityCritical}
)

// Seed generates n mock records spread over the 30 days before now, oldest first.
// The same rng seed always yields the same records apart from IDs.
func Seed(now time.Time, n int, rng *rand.Rand) []Record {
	if n <= 0 {
		return nil
	}
	const span = 30 * 24 * time.Hour

	out := make([]Record, n)
	for i := 0; i < n; i++ {
		t := seedTemplates[rng.Intn(len(seedTemplates))]
		offset := time.Duration(rng.Int63n(int64(span)))
		rec := Record{
			ID:          uuid.NewString(),
			Type:        t.typ,
			Category:    t.category,
			Action:      t.action,
			Description: t.desc,
			Timestamp:   now.Add(-offset).UTC(),
			Status:      seedStatuses[rng.Intn(len(seedStatuses))],
			Severity:    seedSeverities[rng.Intn(len(seedSeverities))],
			User:        seedUsers[rng.Intn(len(seedUsers))],
			IP:          fmt.Sprintf("192.168.%d.%d", rng.Intn(8), 1+rng.Intn(254)),
			Resource:    t.resource,
		}
		if rng.Intn(4) != 0 {
			d := int64(20 + rng.Intn(1500))
			rec.DurationMs = &d
		}
		if rng.Intn(3) == 0 {
			rec.Metadata = map[string]any{"user_agent": "Mozilla/5.0", "session": i}
		}
		out[i] = rec
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

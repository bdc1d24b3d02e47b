package activity

import "time"

// Record is one activity-log entry. Records are immutable once appended; the engine
// only ever derives new slices from them.
type Record struct {
	ID          string    `json:"id" db:"id"`
	Type        Type      `json:"type" db:"type"`
	Category    string    `json:"category" db:"category"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	Timestamp   time.Time `json:"timestamp" db:"occurred_at"`
	Status      Status    `json:"status" db:"status"`
	Severity    Severity  `json:"severity" db:"severity"`

	User     string `json:"user,omitempty" db:"user_name"`
	IP       string `json:"ip,omitempty" db:"ip"`
	Resource string `json:"resource,omitempty" db:"resource"`

	// DurationMs is nil when the action has no measured response time.
	DurationMs *int64         `json:"duration_ms,omitempty" db:"duration_ms"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
}

type Type string

const (
	TypeAuth     Type = "auth"
	TypeUser     Type = "user"
	TypeSystem   Type = "system"
	TypeSecurity Type = "security"
	TypeData     Type = "data"
	TypeAPI      Type = "api"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAuth, TypeUser, TypeSystem, TypeSecurity, TypeData, TypeAPI:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusWarning, StatusError, StatusInfo:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// DateRange is a trailing window ending at the evaluation instant.
type DateRange string

const (
	RangeLastHour  DateRange = "1h"
	RangeLastDay   DateRange = "24h"
	RangeLastWeek  DateRange = "7d"
	RangeLastMonth DateRange = "30d"
	RangeAll       DateRange = "all"
)

// Window returns the trailing duration and whether the range constrains anything.
func (d DateRange) Window() (time.Duration, bool) {
	switch d {
	case RangeLastHour:
		return time.Hour, true
	case RangeLastDay:
		return 24 * time.Hour, true
	case RangeLastWeek:
		return 7 * 24 * time.Hour, true
	case RangeLastMonth:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func (d DateRange) label() string {
	switch d {
	case RangeLastHour:
		return "Last hour"
	case RangeLastDay:
		return "Last 24 hours"
	case RangeLastWeek:
		return "Last 7 days"
	case RangeLastMonth:
		return "Last 30 days"
	default:
		return "All time"
	}
}

// Criteria narrows a record set. Empty strings and "all" are wildcards; every
// non-wildcard field is ANDed with the others.
type Criteria struct {
	Type       Type      `json:"type,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Severity   Severity  `json:"severity,omitempty"`
	DateRange  DateRange `json:"date_range,omitempty"`
	SearchTerm string    `json:"search_term,omitempty"`
	User       string    `json:"user,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Resource   string    `json:"resource,omitempty"`
}

// Result is derived from a record set and criteria; it is never stored.
type Result struct {
	Filtered      []Record `json:"filtered"`
	Stats         Stats    `json:"stats"`
	ActiveFilters []string `json:"active_filters"`
}

type Stats struct {
	TotalLogs    int `json:"total_logs"`
	FilteredLogs int `json:"filtered_logs"`
	SuccessCount int `json:"success_count"`
	WarningCount int `json:"warning_count"`
	ErrorCount   int `json:"error_count"`
	InfoCount    int `json:"info_count"`

	// AverageResponseTime is the mean DurationMs over filtered records that have one.
	// It is nil when none do.
	AverageResponseTime *float64 `json:"average_response_time,omitempty"`

	TopUsers     []Count `json:"top_users"`
	TopResources []Count `json:"top_resources"`
}

type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

package activity

import (
	"fmt"
	"strings"
	"time"
)

type predicate func(Record) bool

// Apply filters records by c as of now and derives stats from the surviving records.
//
// The output keeps input order. Unrecognized enum values in c are ignored rather than
// rejected. Apply never mutates records and holds no state between calls.
func Apply(records []Record, c Criteria, now time.Time) Result {
	preds, active := c.compile(now)

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if matches(r, preds) {
			filtered = append(filtered, r)
		}
	}

	return Result{
		Filtered:      filtered,
		Stats:         computeStats(len(records), filtered),
		ActiveFilters: active,
	}
}

// ActiveFilters describes the non-default fields of c in display order.
func (c Criteria) ActiveFilters() []string {
	_, active := c.compile(time.Time{})
	return active
}

// IsEmpty reports whether c constrains nothing.
func (c Criteria) IsEmpty() bool {
	return len(c.ActiveFilters()) == 0
}

// compile turns c into predicates plus their descriptions. The order is fixed:
// type, status, severity, search, user, ip, resource, date range.
func (c Criteria) compile(now time.Time) ([]predicate, []string) {
	var preds []predicate
	active := make([]string, 0, 8)

	if !isWildcard(string(c.Type)) && c.Type.Valid() {
		want := c.Type
		preds = append(preds, func(r Record) bool { return r.Type == want })
		active = append(active, "Type: "+string(want))
	}
	if !isWildcard(string(c.Status)) && c.Status.Valid() {
		want := c.Status
		preds = append(preds, func(r Record) bool { return r.Status == want })
		active = append(active, "Status: "+string(want))
	}
	if !isWildcard(string(c.Severity)) && c.Severity.Valid() {
		want := c.Severity
		preds = append(preds, func(r Record) bool { return r.Severity == want })
		active = append(active, "Severity: "+string(want))
	}

	if term := strings.TrimSpace(c.SearchTerm); term != "" {
		needle := strings.ToLower(term)
		preds = append(preds, func(r Record) bool {
			return containsFold(r.Action, needle) ||
				containsFold(r.Description, needle) ||
				containsFold(r.Category, needle)
		})
		active = append(active, fmt.Sprintf("Search: %q", term))
	}

	if v := strings.TrimSpace(c.User); v != "" {
		needle := strings.ToLower(v)
		preds = append(preds, func(r Record) bool { return containsFold(r.User, needle) })
		active = append(active, "User: "+v)
	}
	if v := strings.TrimSpace(c.IPAddress); v != "" {
		needle := strings.ToLower(v)
		preds = append(preds, func(r Record) bool { return containsFold(r.IP, needle) })
		active = append(active, "IP: "+v)
	}
	if v := strings.TrimSpace(c.Resource); v != "" {
		needle := strings.ToLower(v)
		preds = append(preds, func(r Record) bool { return containsFold(r.Resource, needle) })
		active = append(active, "Resource: "+v)
	}

	if window, ok := c.DateRange.Window(); ok {
		cutoff := now.Add(-window)
		preds = append(preds, func(r Record) bool { return !r.Timestamp.Before(cutoff) })
		active = append(active, "Date: "+c.DateRange.label())
	}

	return preds, active
}

func matches(r Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func isWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

// containsFold reports whether s contains needle, which must already be lowercase.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

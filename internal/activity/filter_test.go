package activity

import (
	"reflect"
	"testing"
	"time"
)

var testNow = time.Unix(1700000000, 0).UTC()

func ms(v int64) *int64 { return &v }

func TestApply_ComposesWithAnd(t *testing.T) {
	recs := []Record{
		{ID: "1", Status: StatusSuccess, Type: TypeUser},
		{ID: "2", Status: StatusError, Type: TypeUser},
		{ID: "3", Status: StatusSuccess, Type: TypeSystem},
	}
	res := Apply(recs, Criteria{Status: StatusSuccess, Type: TypeUser}, testNow)
	if len(res.Filtered) != 1 || res.Filtered[0].ID != "1" {
		t.Fatalf("expected only record 1, got %+v", res.Filtered)
	}
}

func TestApply_DateRangeCutoff(t *testing.T) {
	recs := []Record{
		{ID: "recent", Timestamp: testNow.Add(-30 * time.Minute), Status: StatusInfo},
		{ID: "old", Timestamp: testNow.Add(-2 * time.Hour), Status: StatusInfo},
	}
	res := Apply(recs, Criteria{DateRange: RangeLastHour}, testNow)
	if len(res.Filtered) != 1 || res.Filtered[0].ID != "recent" {
		t.Fatalf("expected only recent record, got %+v", res.Filtered)
	}

	edge := []Record{{ID: "edge", Timestamp: testNow.Add(-time.Hour)}}
	if got := Apply(edge, Criteria{DateRange: RangeLastHour}, testNow); len(got.Filtered) != 1 {
		t.Fatalf("expected record exactly at cutoff to be kept")
	}

	if got := Apply(recs, Criteria{DateRange: RangeAll}, testNow); len(got.Filtered) != 2 {
		t.Fatalf("expected all range to keep everything")
	}
}

func TestApply_StatsMatchFilteredSet(t *testing.T) {
	recs := Seed(testNow, 200, newRand(7))
	criteria := []Criteria{
		{},
		{Status: StatusError},
		{Type: TypeSecurity, Severity: SeverityHigh},
		{DateRange: RangeLastWeek, SearchTerm: "login"},
		{User: "jane", Resource: "/users"},
	}
	for _, c := range criteria {
		res := Apply(recs, c, testNow)
		st := res.Stats
		if st.TotalLogs != len(recs) {
			t.Fatalf("%+v: total %d, want %d", c, st.TotalLogs, len(recs))
		}
		if st.FilteredLogs != len(res.Filtered) {
			t.Fatalf("%+v: filtered %d, want %d", c, st.FilteredLogs, len(res.Filtered))
		}
		if sum := st.SuccessCount + st.WarningCount + st.ErrorCount + st.InfoCount; sum != len(res.Filtered) {
			t.Fatalf("%+v: status counts sum %d, want %d", c, sum, len(res.Filtered))
		}
		if len(st.TopUsers) > 5 || len(st.TopResources) > 5 {
			t.Fatalf("%+v: top lists exceed 5", c)
		}
	}
}

func TestApply_TopUsersRankByCountThenFirstSeen(t *testing.T) {
	var recs []Record
	for _, u := range []string{"A", "A", "B", "C", "C", "C"} {
		recs = append(recs, Record{User: u, Status: StatusInfo})
	}
	got := Apply(recs, Criteria{}, testNow).Stats.TopUsers
	want := []Count{{"C", 3}, {"A", 2}, {"B", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	tied := []Record{{User: "X"}, {User: "Y"}, {User: "Z"}, {User: "Y"}, {User: "X"}}
	got = Apply(tied, Criteria{}, testNow).Stats.TopUsers
	want = []Count{{"X", 2}, {"Y", 2}, {"Z", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ties: got %+v, want %+v", got, want)
	}
}

func TestApply_TopResourcesTruncatedToFive(t *testing.T) {
	var recs []Record
	for _, r := range []string{"/a", "/b", "/c", "/d", "/e", "/f", "/f"} {
		recs = append(recs, Record{Resource: r})
	}
	top := Apply(recs, Criteria{}, testNow).Stats.TopResources
	if len(top) != 5 || top[0].Value != "/f" || top[4].Value != "/d" {
		t.Fatalf("unexpected top resources: %+v", top)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	res := Apply(nil, Criteria{Type: TypeAuth, SearchTerm: "x", DateRange: RangeLastDay}, testNow)
	if res.Filtered == nil || len(res.Filtered) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", res.Filtered)
	}
	st := res.Stats
	if st.TotalLogs != 0 || st.FilteredLogs != 0 || st.SuccessCount != 0 || st.ErrorCount != 0 {
		t.Fatalf("expected zero stats, got %+v", st)
	}
	if st.AverageResponseTime != nil {
		t.Fatalf("expected no average for empty input")
	}
}

func TestApply_AverageResponseTimeSkipsMissingDurations(t *testing.T) {
	recs := []Record{
		{DurationMs: ms(100)},
		{DurationMs: ms(300)},
		{},
	}
	avg := Apply(recs, Criteria{}, testNow).Stats.AverageResponseTime
	if avg == nil || *avg != 200 {
		t.Fatalf("expected average 200, got %v", avg)
	}

	none := Apply([]Record{{}, {}}, Criteria{}, testNow).Stats.AverageResponseTime
	if none != nil {
		t.Fatalf("expected nil average without durations, got %v", *none)
	}
}

func TestApply_SearchMatchesActionDescriptionOrCategory(t *testing.T) {
	recs := []Record{
		{ID: "action", Action: "User LOGIN"},
		{ID: "desc", Description: "password reset after login"},
		{ID: "cat", Category: "Login Events"},
		{ID: "user-only", User: "login@example.com"},
	}
	res := Apply(recs, Criteria{SearchTerm: "  Login "}, testNow)
	var ids []string
	for _, r := range res.Filtered {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"action", "desc", "cat"}) {
		t.Fatalf("unexpected matches %v", ids)
	}
}

func TestApply_SubstringMatchersAreCaseInsensitive(t *testing.T) {
	recs := []Record{
		{ID: "1", User: "Jane.Doe@example.com", IP: "10.0.0.5", Resource: "/API/users"},
		{ID: "2", User: "john@example.com", IP: "10.0.1.5", Resource: "/api/users"},
	}
	res := Apply(recs, Criteria{User: "jane", IPAddress: "10.0.0", Resource: "/api"}, testNow)
	if len(res.Filtered) != 1 || res.Filtered[0].ID != "1" {
		t.Fatalf("expected record 1, got %+v", res.Filtered)
	}
}

func TestApply_UnrecognizedValuesAreIgnored(t *testing.T) {
	recs := []Record{{ID: "1", Type: TypeAuth}, {ID: "2", Type: TypeData}}
	res := Apply(recs, Criteria{Type: "bogus", Status: "nope", Severity: "extreme", DateRange: "90d"}, testNow)
	if len(res.Filtered) != 2 {
		t.Fatalf("expected no constraint from unknown values, got %d records", len(res.Filtered))
	}
	if len(res.ActiveFilters) != 0 {
		t.Fatalf("expected no active filters, got %v", res.ActiveFilters)
	}
}

func TestApply_WildcardAll(t *testing.T) {
	recs := []Record{{Type: TypeAuth, Status: StatusError}, {Type: TypeData, Status: StatusInfo}}
	res := Apply(recs, Criteria{Type: "all", Status: "ALL", Severity: "all", DateRange: RangeAll}, testNow)
	if len(res.Filtered) != 2 || len(res.ActiveFilters) != 0 {
		t.Fatalf("expected wildcards to be no-ops, got %+v", res)
	}
}

func TestApply_ActiveFiltersFixedOrder(t *testing.T) {
	c := Criteria{
		DateRange:  RangeLastDay,
		Resource:   "/users",
		IPAddress:  "10.0",
		User:       "jane",
		SearchTerm: "login",
		Severity:   SeverityHigh,
		Status:     StatusError,
		Type:       TypeSecurity,
	}
	want := []string{
		"Type: security",
		"Status: error",
		"Severity: high",
		`Search: "login"`,
		"User: jane",
		"IP: 10.0",
		"Resource: /users",
		"Date: Last 24 hours",
	}
	if got := Apply(nil, c, testNow).ActiveFilters; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !reflect.DeepEqual(c.ActiveFilters(), want) {
		t.Fatalf("Criteria.ActiveFilters disagrees with Apply")
	}
	if c.IsEmpty() || !(Criteria{}).IsEmpty() {
		t.Fatalf("IsEmpty mismatch")
	}
}

func TestApply_PreservesOrderAndInput(t *testing.T) {
	recs := []Record{{ID: "c", Status: StatusError}, {ID: "a", Status: StatusError}, {ID: "b", Status: StatusInfo}, {ID: "d", Status: StatusError}}
	before := append([]Record(nil), recs...)

	res := Apply(recs, Criteria{Status: StatusError}, testNow)
	var ids []string
	for _, r := range res.Filtered {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "d"}) {
		t.Fatalf("order not preserved: %v", ids)
	}
	if !reflect.DeepEqual(recs, before) {
		t.Fatalf("input was mutated")
	}
	if again := Apply(recs, Criteria{Status: StatusError}, testNow); !reflect.DeepEqual(again, res) {
		t.Fatalf("same inputs produced different results")
	}
}

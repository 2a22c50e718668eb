package regstats

import (
	"testing"

	"github.com/cedarstats/regstats/internal/database"
)

func enrollment(term, course, student, status string) database.Enrollment {
	return database.Enrollment{
		Campus: "ABQ", College: "AS", Term: term, SubjectCourse: course,
		StudentID: student, RegistrationStatus: status,
	}
}

func section(term, course string, available, capacity, waitlist int) database.Section {
	return database.Section{
		Campus: "ABQ", College: "AS", Term: term, SubjectCourse: course,
		Available: available, Capacity: capacity, WaitlistCount: waitlist,
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   StatusKind
	}{
		{"RE", StatusActive},
		{"RW", StatusActive},
		{"DR", StatusEarlyDrop},
		{"DD", StatusEarlyDrop},
		{"W", StatusLateDrop},
		{"WF", StatusLateDrop},
		{"XX", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAggregateCountsByStatus(t *testing.T) {
	enrollments := []database.Enrollment{
		enrollment("202510", "MATH 1220", "s1", "RE"),
		enrollment("202510", "MATH 1220", "s2", "RE"),
		enrollment("202510", "MATH 1220", "s3", "RW"),
		enrollment("202510", "MATH 1220", "s4", "DR"),
		enrollment("202510", "MATH 1220", "s5", "W"),
		enrollment("202510", "MATH 1220", "s6", "WD"),
		enrollment("202510", "MATH 1220", "s7", "ZZ"), // unknown, not counted
	}
	sections := []database.Section{
		section("202510", "MATH 1220", 5, 30, 4),
	}

	records := Aggregate(sections, enrollments)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Registered != 3 {
		t.Errorf("expected 3 registered, got %d", r.Registered)
	}
	if r.EarlyDrops != 1 {
		t.Errorf("expected 1 early drop, got %d", r.EarlyDrops)
	}
	if r.LateDrops != 2 {
		t.Errorf("expected 2 late drops, got %d", r.LateDrops)
	}
	if r.Waiting != 4 || r.Available != 5 || r.Capacity != 30 {
		t.Errorf("section metrics mis-merged: %+v", r)
	}
}

func TestAggregateSumsMultipleSections(t *testing.T) {
	sections := []database.Section{
		section("202510", "MATH 1220", 5, 30, 2),
		section("202510", "MATH 1220", -3, 25, 6),
	}
	records := Aggregate(sections, nil)
	if len(records) != 1 {
		t.Fatalf("expected sections merged into 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Available != 2 || r.Capacity != 55 || r.Waiting != 8 {
		t.Errorf("expected summed section metrics, got %+v", r)
	}
}

func TestAggregateRetainsZeroEnrollmentCourses(t *testing.T) {
	sections := []database.Section{
		section("202510", "MATH 1220", 30, 30, 0),
	}
	records := Aggregate(sections, nil)
	if len(records) != 1 {
		t.Fatalf("expected empty offering retained, got %d records", len(records))
	}
	if records[0].Registered != 0 {
		t.Errorf("expected zero registered, got %d", records[0].Registered)
	}
}

func TestAggregateSeparatesCourseIdentities(t *testing.T) {
	enrollments := []database.Enrollment{
		enrollment("202510", "MATH 1220", "s1", "RE"),
		enrollment("202480", "MATH 1220", "s1", "RE"),
	}
	other := enrollment("202510", "MATH 1220", "s2", "RE")
	other.Campus = "GAL"
	enrollments = append(enrollments, other)

	records := Aggregate(nil, enrollments)
	if len(records) != 3 {
		t.Fatalf("expected 3 distinct course-term records, got %d", len(records))
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	records := Aggregate(nil, nil)
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	sections := []database.Section{
		section("202510", "MATH 1220", 1, 1, 0),
		section("202480", "MATH 1220", 1, 1, 0),
		section("202510", "BIOL 1110", 1, 1, 0),
	}
	a := Aggregate(sections, nil)
	b := Aggregate(sections, nil)
	for i := range a {
		if a[i].CourseID() != b[i].CourseID() {
			t.Fatalf("aggregation order not deterministic at %d", i)
		}
	}
	if a[0].SubjectCourse != "BIOL 1110" {
		t.Errorf("expected course-sorted output, got %s first", a[0].SubjectCourse)
	}
}

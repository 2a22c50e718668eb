package regstats

import (
	"sort"

	"github.com/cedarstats/regstats/internal/database"
)

// StatusKind buckets a raw registration status code.
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusActive
	StatusEarlyDrop
	StatusLateDrop
)

// statusKinds maps vendor registration status codes to their bucket.
// Early drops happen before census; W-codes are post-census withdrawals.
var statusKinds = map[string]StatusKind{
	"RE": StatusActive,
	"RW": StatusActive,
	"DR": StatusEarlyDrop,
	"DD": StatusEarlyDrop,
	"DC": StatusEarlyDrop,
	"W":  StatusLateDrop,
	"WD": StatusLateDrop,
	"WF": StatusLateDrop,
}

// ClassifyStatus returns the bucket for a registration status code.
// Unrecognized codes return StatusUnknown and are not counted.
func ClassifyStatus(status string) StatusKind {
	return statusKinds[status]
}

// MetricStats is the per-course baseline for one raw metric, joined onto a
// record, plus the record's normalized deviation from it. DeviationOK is
// false when the deviation is not computable (zero SD, single-term history).
type MetricStats struct {
	Mean        float64 `json:"mean"`
	SD          float64 `json:"pop_sd"`
	Deviation   float64 `json:"sd_deviation"`
	DeviationOK bool    `json:"sd_deviation_ok"`
}

// MetricRecord is one per-course-per-term rollup of registration activity.
type MetricRecord struct {
	Campus        string `json:"campus"`
	College       string `json:"college"`
	Term          string `json:"term"`
	SubjectCourse string `json:"subject_course"`

	Registered int `json:"registered"`
	EarlyDrops int `json:"early_drops"`
	LateDrops  int `json:"late_drops"`
	Waiting    int `json:"waiting"`
	Available  int `json:"available"`
	Capacity   int `json:"capacity"`

	RegisteredStats MetricStats `json:"registered_stats"`
	EarlyDropStats  MetricStats `json:"early_drop_stats"`
	LateDropStats   MetricStats `json:"late_drop_stats"`
	WaitingStats    MetricStats `json:"waiting_stats"`

	// Squeeze is available seats relative to the course's typical early
	// attrition. Low values mean students may be locked out despite churn.
	Squeeze   float64 `json:"squeeze"`
	SqueezeOK bool    `json:"squeeze_ok"`
}

// CourseID identifies a course offering in one term.
func (m MetricRecord) CourseID() string {
	return m.Campus + "|" + m.College + "|" + m.Term + "|" + m.SubjectCourse
}

type recordKey struct {
	campus, college, term, subjectCourse string
}

// Aggregate builds one MetricRecord per (campus, college, term,
// subject_course) from raw section and enrollment rows. Waitlist, available
// and capacity come from sections; registration counts from enrollments.
// Courses present only in the section table are retained with zero counts so
// new or emptied offerings stay visible to the classifiers.
func Aggregate(sections []database.Section, enrollments []database.Enrollment) []MetricRecord {
	records := make(map[recordKey]*MetricRecord)

	get := func(k recordKey) *MetricRecord {
		if r, ok := records[k]; ok {
			return r
		}
		r := &MetricRecord{
			Campus:        k.campus,
			College:       k.college,
			Term:          k.term,
			SubjectCourse: k.subjectCourse,
		}
		records[k] = r
		return r
	}

	for _, s := range sections {
		r := get(recordKey{s.Campus, s.College, s.Term, s.SubjectCourse})
		r.Waiting += s.WaitlistCount
		r.Available += s.Available
		r.Capacity += s.Capacity
	}

	for _, e := range enrollments {
		r := get(recordKey{e.Campus, e.College, e.Term, e.SubjectCourse})
		switch ClassifyStatus(e.RegistrationStatus) {
		case StatusActive:
			r.Registered++
		case StatusEarlyDrop:
			r.EarlyDrops++
		case StatusLateDrop:
			r.LateDrops++
		}
	}

	out := make([]MetricRecord, 0, len(records))
	for _, r := range records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Campus != b.Campus {
			return a.Campus < b.Campus
		}
		if a.College != b.College {
			return a.College < b.College
		}
		if a.SubjectCourse != b.SubjectCourse {
			return a.SubjectCourse < b.SubjectCourse
		}
		return a.Term < b.Term
	})
	return out
}

// Package ingest loads the vendor CSV extracts into the local database.
// Header validation is the one place the engine fails fast: a partial join
// over a misshapen extract would silently produce wrong anomaly counts.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cedarstats/regstats/internal/database"
)

// Required column sets for the two extracts. Extra columns are ignored and
// column order is free.
var (
	sectionColumns = []string{
		"campus", "college", "term", "subject_course",
		"available", "capacity", "waitlist_count",
	}
	enrollmentColumns = []string{
		"campus", "college", "term", "subject_course",
		"registration_status",
	}
)

// header maps lowercased column names to their position.
type header map[string]int

// readHeader validates the first CSV row against the required column set.
// On failure the error names every missing column and lists every column
// actually present.
func readHeader(r *csv.Reader, required []string, table string) (header, error) {
	row, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file, expected a header row", table)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", table, err)
	}

	h := make(header, len(row))
	present := make([]string, 0, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(name))
		h[name] = i
		present = append(present, name)
	}

	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s: missing required columns [%s]; columns present: [%s]",
			table, strings.Join(missing, ", "), strings.Join(present, ", "))
	}
	return h, nil
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// getInt parses a count column. Blank cells are 0: sparse vendor extracts
// must degrade, not crash. Anything unparsable is an error naming the spot.
func (h header) getInt(row []string, name string, line int) (int, error) {
	s := h.get(row, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d, column %s: invalid number %q", line, name, s)
	}
	return n, nil
}

// ReadSections parses a section extract.
func ReadSections(src io.Reader) ([]database.Section, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, sectionColumns, "sections")
	if err != nil {
		return nil, err
	}

	var sections []database.Section
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sections: %w", err)
		}
		line++

		s := database.Section{
			Campus:        h.get(row, "campus"),
			College:       h.get(row, "college"),
			Term:          h.get(row, "term"),
			SubjectCourse: h.get(row, "subject_course"),
			Level:         h.get(row, "level"),
		}
		if s.Available, err = h.getInt(row, "available", line); err != nil {
			return nil, fmt.Errorf("sections: %w", err)
		}
		if s.Capacity, err = h.getInt(row, "capacity", line); err != nil {
			return nil, fmt.Errorf("sections: %w", err)
		}
		if s.WaitlistCount, err = h.getInt(row, "waitlist_count", line); err != nil {
			return nil, fmt.Errorf("sections: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// ReadEnrollments parses an enrollment extract.
func ReadEnrollments(src io.Reader) ([]database.Enrollment, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, enrollmentColumns, "enrollments")
	if err != nil {
		return nil, err
	}

	var enrollments []database.Enrollment
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("enrollments: %w", err)
		}

		enrollments = append(enrollments, database.Enrollment{
			Campus:             h.get(row, "campus"),
			College:            h.get(row, "college"),
			Term:               h.get(row, "term"),
			SubjectCourse:      h.get(row, "subject_course"),
			Level:              h.get(row, "level"),
			StudentID:          h.get(row, "student_id"),
			RegistrationStatus: strings.ToUpper(h.get(row, "registration_status")),
		})
	}
	return enrollments, nil
}

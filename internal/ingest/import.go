package ingest

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/cedarstats/regstats/internal/database"
)

// Result holds the outcome of an import run.
type Result struct {
	Sections     int
	Enrollments  int
	TermsCleared []string
}

// Import loads a section extract and an enrollment extract into the
// database. Terms present in the new files are cleared first so a re-import
// replaces a term's rows instead of doubling its counts.
func Import(db *database.DB, sectionsPath, enrollmentsPath string) (*Result, error) {
	sf, err := os.Open(sectionsPath)
	if err != nil {
		return nil, fmt.Errorf("opening sections file: %w", err)
	}
	defer sf.Close()

	sections, err := ReadSections(sf)
	if err != nil {
		return nil, err
	}

	ef, err := os.Open(enrollmentsPath)
	if err != nil {
		return nil, fmt.Errorf("opening enrollments file: %w", err)
	}
	defer ef.Close()

	enrollments, err := ReadEnrollments(ef)
	if err != nil {
		return nil, err
	}

	terms := make(map[string]bool)
	for _, s := range sections {
		terms[s.Term] = true
	}
	for _, e := range enrollments {
		terms[e.Term] = true
	}

	r := &Result{Sections: len(sections), Enrollments: len(enrollments)}
	for term := range terms {
		r.TermsCleared = append(r.TermsCleared, term)
	}
	sort.Strings(r.TermsCleared)

	for _, term := range r.TermsCleared {
		if err := db.ClearSectionsForTerm(term); err != nil {
			return nil, fmt.Errorf("clearing sections for %s: %w", term, err)
		}
		if err := db.ClearEnrollmentsForTerm(term); err != nil {
			return nil, fmt.Errorf("clearing enrollments for %s: %w", term, err)
		}
	}

	if err := db.InsertSections(sections); err != nil {
		return nil, fmt.Errorf("inserting sections: %w", err)
	}
	if err := db.InsertEnrollments(enrollments); err != nil {
		return nil, fmt.Errorf("inserting enrollments: %w", err)
	}

	log.Printf("imported %d sections and %d enrollments across %d terms",
		r.Sections, r.Enrollments, len(terms))
	return r, nil
}

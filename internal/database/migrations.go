package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS sections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    campus TEXT NOT NULL,
    college TEXT NOT NULL,
    term TEXT NOT NULL,
    subject_course TEXT NOT NULL,
    level TEXT NOT NULL DEFAULT '',
    available INTEGER NOT NULL DEFAULT 0,
    capacity INTEGER NOT NULL DEFAULT 0,
    waitlist_count INTEGER NOT NULL DEFAULT 0,
    imported_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS enrollments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    campus TEXT NOT NULL,
    college TEXT NOT NULL,
    term TEXT NOT NULL,
    subject_course TEXT NOT NULL,
    level TEXT NOT NULL DEFAULT '',
    student_id TEXT NOT NULL,
    registration_status TEXT NOT NULL,
    imported_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sections_course
    ON sections(campus, college, term, subject_course);
CREATE INDEX IF NOT EXISTS idx_enrollments_course
    ON enrollments(campus, college, term, subject_course);
CREATE INDEX IF NOT EXISTS idx_sections_term ON sections(term);
CREATE INDEX IF NOT EXISTS idx_enrollments_term ON enrollments(term);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

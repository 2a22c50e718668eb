package database

import "database/sql"

// InsertSection inserts a single section row.
func (db *DB) InsertSection(s Section) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO sections (campus, college, term, subject_course, level, available, capacity, waitlist_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Campus, s.College, s.Term, s.SubjectCourse, s.Level, s.Available, s.Capacity, s.WaitlistCount,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertSections bulk-inserts section rows in a single transaction.
func (db *DB) InsertSections(sections []Section) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO sections (campus, college, term, subject_course, level, available, capacity, waitlist_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range sections {
		if _, err := stmt.Exec(s.Campus, s.College, s.Term, s.SubjectCourse, s.Level,
			s.Available, s.Capacity, s.WaitlistCount); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetSections returns section rows matching the filter, all terms included.
func (db *DB) GetSections(f Filter) ([]Section, error) {
	query := `SELECT id, campus, college, term, subject_course, level, available, capacity, waitlist_count
		FROM sections WHERE 1=1`
	query, args := applyFilter(query, nil, f)
	query += " ORDER BY campus, college, subject_course, term"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSections(rows)
}

// ClearSectionsForTerm deletes a term's section rows so a re-import replaces
// them instead of doubling counts.
func (db *DB) ClearSectionsForTerm(term string) error {
	_, err := db.conn.Exec("DELETE FROM sections WHERE term = ?", term)
	return err
}

// applyFilter appends the optional college/campus/level predicates.
func applyFilter(query string, args []any, f Filter) (string, []any) {
	if f.College != "" {
		query += " AND college = ?"
		args = append(args, f.College)
	}
	if f.Campus != "" {
		query += " AND campus = ?"
		args = append(args, f.Campus)
	}
	if f.Level != "" {
		query += " AND level = ?"
		args = append(args, f.Level)
	}
	return query, args
}

func scanSections(rows *sql.Rows) ([]Section, error) {
	var sections []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Campus, &s.College, &s.Term, &s.SubjectCourse,
			&s.Level, &s.Available, &s.Capacity, &s.WaitlistCount); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

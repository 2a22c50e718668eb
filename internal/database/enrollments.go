package database

import "database/sql"

// InsertEnrollment inserts a single enrollment row.
func (db *DB) InsertEnrollment(e Enrollment) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO enrollments (campus, college, term, subject_course, level, student_id, registration_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Campus, e.College, e.Term, e.SubjectCourse, e.Level, e.StudentID, e.RegistrationStatus,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertEnrollments bulk-inserts enrollment rows in a single transaction.
func (db *DB) InsertEnrollments(enrollments []Enrollment) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO enrollments (campus, college, term, subject_course, level, student_id, registration_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range enrollments {
		if _, err := stmt.Exec(e.Campus, e.College, e.Term, e.SubjectCourse, e.Level,
			e.StudentID, e.RegistrationStatus); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetEnrollments returns enrollment rows matching the filter, all terms
// included.
func (db *DB) GetEnrollments(f Filter) ([]Enrollment, error) {
	query := `SELECT id, campus, college, term, subject_course, level, student_id, registration_status
		FROM enrollments WHERE 1=1`
	query, args := applyFilter(query, nil, f)
	query += " ORDER BY campus, college, subject_course, term"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

// ClearEnrollmentsForTerm deletes a term's enrollment rows before re-import.
func (db *DB) ClearEnrollmentsForTerm(term string) error {
	_, err := db.conn.Exec("DELETE FROM enrollments WHERE term = ?", term)
	return err
}

func scanEnrollments(rows *sql.Rows) ([]Enrollment, error) {
	var enrollments []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.Campus, &e.College, &e.Term, &e.SubjectCourse,
			&e.Level, &e.StudentID, &e.RegistrationStatus); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

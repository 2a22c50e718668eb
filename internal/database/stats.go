package database

// GetStats returns aggregate row counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM sections").Scan(&stats.Sections); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM enrollments").Scan(&stats.Enrollments); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(DISTINCT college) FROM sections").Scan(&stats.Colleges); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(DISTINCT campus) FROM sections").Scan(&stats.Campuses); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query("SELECT DISTINCT term FROM sections ORDER BY term")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		stats.Terms = append(stats.Terms, term)
	}
	return stats, rows.Err()
}

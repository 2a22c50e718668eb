package database

// Section is one offered section row from the vendor section extract.
type Section struct {
	ID            int64
	Campus        string
	College       string
	Term          string
	SubjectCourse string
	Level         string
	Available     int // may be negative when over-enrolled
	Capacity      int
	WaitlistCount int
}

// Enrollment is one student-section registration row.
type Enrollment struct {
	ID                 int64
	Campus             string
	College            string
	Term               string
	SubjectCourse      string
	Level              string
	StudentID          string
	RegistrationStatus string
}

// Filter restricts queries to a college, campus or course level. Empty
// fields mean "all". There is deliberately no term field: per-course
// baselines need every term present.
type Filter struct {
	College string
	Campus  string
	Level   string
}

// Stats contains aggregate database statistics for the status command.
type Stats struct {
	Sections    int
	Enrollments int
	Terms       []string
	Colleges    int
	Campuses    int
}

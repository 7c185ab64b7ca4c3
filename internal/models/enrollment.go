package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Completed is set by the grading process
// and is what "prerequisite satisfied" means; Withdrawn rows are kept as
// history.
const (
	EnrollmentStatusPending   EnrollmentStatus = "Pending"
	EnrollmentStatusCompleted EnrollmentStatus = "Completed"
	EnrollmentStatusWithdrawn EnrollmentStatus = "Withdrawn"
)

// Enrollment captures a student's registration for a course. At most one
// non-Withdrawn row exists per (student_id, course_id).
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	CourseID     string           `db:"course_id" json:"course_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	RegisteredAt time.Time        `db:"registered_at" json:"registered_at"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	LastUpdated  time.Time        `db:"last_updated" json:"last_updated"`
}

// EnrollmentDetail enriches Enrollment with course info for responses.
type EnrollmentDetail struct {
	Enrollment
	CourseName  string `db:"course_name" json:"course_name"`
	CreditHours int    `db:"credit_hours" json:"credit_hours"`
}

// CourseAvailability describes whether a student may register for a
// course right now, and if not, why.
type CourseAvailability struct {
	CourseID       string   `json:"course_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CreditHours    int      `json:"credit_hours"`
	DepartmentName string   `json:"department_name"`
	Prerequisites  []string `json:"prerequisites"`
	CanEnroll      bool     `json:"can_enroll"`
	Reason         string   `json:"reason,omitempty"`
}

package models

// UserRole is the closed set of actor roles.
type UserRole string

// Actor roles.
const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// Student carries the registration-relevant slice of a student record.
// CreditHours is the remaining credit budget for the term.
type Student struct {
	StudentID   string  `db:"student_id" json:"student_id"`
	Name        string  `db:"name" json:"name"`
	Email       string  `db:"email" json:"email"`
	Major       string  `db:"major" json:"major"`
	GPA         float64 `db:"gpa" json:"gpa"`
	CreditHours int     `db:"credit_hours" json:"credit_hours"`
}

// Instructor is reference data used for slot display names.
type Instructor struct {
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	Name         string `db:"name" json:"name"`
	DepartmentID string `db:"department_id" json:"department_id"`
}

package models

import "github.com/lib/pq"

// Semester identifies an offering term.
type Semester string

// Offering terms.
const (
	SemesterFall   Semester = "Fall"
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
)

// ValidSemester reports whether s is a recognised offering term.
func ValidSemester(s Semester) bool {
	switch s {
	case SemesterFall, SemesterSpring, SemesterSummer:
		return true
	}
	return false
}

// Course is a catalog entry. Prerequisites may reference courses that do
// not (yet) exist; the graph engine tolerates dangling ids.
type Course struct {
	CourseID      string         `db:"course_id" json:"course_id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	CreditHours   int            `db:"credit_hours" json:"credit_hours"`
	DepartmentID  string         `db:"department_id" json:"department_id"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites"`
	Semesters     pq.StringArray `db:"semesters" json:"semesters"`
	Level         *int           `db:"level" json:"level,omitempty"`
}

// OfferedIn reports whether the course is offered in the given semester.
func (c *Course) OfferedIn(semester Semester) bool {
	for _, s := range c.Semesters {
		if Semester(s) == semester {
			return true
		}
	}
	return false
}

// Department is read-mostly reference data owned by the admin workflow.
type Department struct {
	DepartmentID string `db:"department_id" json:"department_id"`
	Name         string `db:"name" json:"name"`
}

// Room is read-mostly reference data; capacity bounds seat availability.
type Room struct {
	RoomID     string `db:"room_id" json:"room_id"`
	Building   string `db:"building" json:"building"`
	RoomNumber string `db:"room_number" json:"room_number"`
	Capacity   int    `db:"capacity" json:"capacity"`
}

// DisplayName renders the conventional building-number room label.
func (r *Room) DisplayName() string {
	if r == nil {
		return "Unknown"
	}
	return r.Building + "-" + r.RoomNumber
}

package models

import "time"

// SemesterPolicy is the single semester-settings document: the current
// term plus the registration and withdrawal windows. A nil boundary
// means the window is open-ended on that side while enabled.
type SemesterPolicy struct {
	ID                string     `db:"id" json:"-"`
	CurrentSemester   Semester   `db:"current_semester" json:"current_semester"`
	AcademicYear      string     `db:"academic_year" json:"academic_year"`
	RegistrationOpen  bool       `db:"registration_enabled" json:"registration_enabled"`
	RegistrationStart *time.Time `db:"registration_start" json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time `db:"registration_end" json:"registration_end,omitempty"`
	WithdrawalOpen    bool       `db:"withdrawal_enabled" json:"withdrawal_enabled"`
	WithdrawalStart   *time.Time `db:"withdrawal_start" json:"withdrawal_start,omitempty"`
	WithdrawalEnd     *time.Time `db:"withdrawal_end" json:"withdrawal_end,omitempty"`
	LastUpdated       time.Time  `db:"last_updated" json:"last_updated"`
}

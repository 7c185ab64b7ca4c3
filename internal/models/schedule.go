package models

import "time"

// DayOfWeek names a teaching day.
type DayOfWeek string

// Teaching days.
const (
	Sunday    DayOfWeek = "Sunday"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
)

// Days lists the week in display order.
var Days = []DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// SlotType classifies a time slot.
type SlotType string

// Slot types. Every course needs a Lecture selection; Lab and Tutorial
// are required only when the course defines slots of that type.
const (
	SlotTypeLecture  SlotType = "Lecture"
	SlotTypeLab      SlotType = "Lab"
	SlotTypeTutorial SlotType = "Tutorial"
)

// SlotTypes lists all slot types in recommendation order.
var SlotTypes = []SlotType{SlotTypeLecture, SlotTypeLab, SlotTypeTutorial}

// ValidSlotType reports whether t is a recognised slot type.
func ValidSlotType(t SlotType) bool {
	switch t {
	case SlotTypeLecture, SlotTypeLab, SlotTypeTutorial:
		return true
	}
	return false
}

// TimeSlot is an offered meeting time for a course. Start and end are
// clock strings; the conflict engine normalizes them to minutes since
// midnight before comparison.
type TimeSlot struct {
	SlotID       string    `db:"slot_id" json:"slot_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	Day          DayOfWeek `db:"day" json:"day"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Type         SlotType  `db:"type" json:"type"`
	RoomID       string    `db:"room_id" json:"room_id"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
}

// TimeSlotDetail enriches a TimeSlot with display names.
type TimeSlotDetail struct {
	TimeSlot
	CourseName     string  `json:"course_name"`
	RoomName       string  `json:"room_name"`
	InstructorName *string `json:"instructor_name,omitempty"`
}

// SlotSeats is a TimeSlotDetail with point-in-time seat accounting.
type SlotSeats struct {
	TimeSlotDetail
	RoomCapacity   int `json:"room_capacity"`
	EnrolledCount  int `json:"enrolled_count"`
	SeatsAvailable int `json:"seats_available"`
}

// CourseSeatAvailability groups a course's slots with seat counts.
type CourseSeatAvailability struct {
	CourseID   string                   `json:"course_id"`
	CourseName string                   `json:"course_name"`
	Slots      map[SlotType][]SlotSeats `json:"slots"`
}

// ScheduleEntry binds a student's (course, type) pair to a chosen slot.
// Day and times are denormalized from the slot for conflict checks.
type ScheduleEntry struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	SlotID       string    `db:"slot_id" json:"slot_id"`
	Type         SlotType  `db:"type" json:"type"`
	Day          DayOfWeek `db:"day" json:"day"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	RoomID       string    `db:"room_id" json:"room_id"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}

// ConflictSide describes one half of a conflicting pair.
type ConflictSide struct {
	CourseID   string   `json:"course_id"`
	CourseName string   `json:"course_name"`
	Type       SlotType `json:"type"`
	TimeRange  string   `json:"time_range"`
}

// ConflictPair reports two overlapping schedule entries on the same day.
type ConflictPair struct {
	Day    DayOfWeek    `json:"day"`
	First  ConflictSide `json:"first"`
	Second ConflictSide `json:"second"`
}

// WeeklySchedule is a student's full schedule grouped by day.
type WeeklySchedule struct {
	StudentID        string                         `json:"student_id"`
	Semester         string                         `json:"semester"`
	TotalCourses     int                            `json:"total_courses"`
	TotalCreditHours int                            `json:"total_credit_hours"`
	WeeklyClassHours float64                        `json:"weekly_class_hours"`
	Days             map[DayOfWeek][]TimeSlotDetail `json:"schedule"`
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unireg/registrar-api/internal/models"
)

// TimeSlotRepository reads the offered meeting times of courses.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs a TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListByCourse returns every slot offered for a course.
func (r *TimeSlotRepository) ListByCourse(ctx context.Context, courseID string) ([]models.TimeSlot, error) {
	const query = `SELECT slot_id, course_id, day, start_time, end_time, type, room_id, instructor_id
        FROM time_slots WHERE course_id = $1 ORDER BY slot_id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, courseID); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListAll returns every slot in the catalog.
func (r *TimeSlotRepository) ListAll(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT slot_id, course_id, day, start_time, end_time, type, room_id, instructor_id
        FROM time_slots ORDER BY course_id, slot_id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list all time slots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT slot_id, course_id, day, start_time, end_time, type, room_id, instructor_id
        FROM time_slots WHERE slot_id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByCourses returns all slots for the given courses keyed by
// course id. Used when assembling seat availability for many courses.
func (r *TimeSlotRepository) ListByCourses(ctx context.Context, courseIDs []string) (map[string][]models.TimeSlot, error) {
	out := make(map[string][]models.TimeSlot, len(courseIDs))
	if len(courseIDs) == 0 {
		return out, nil
	}
	const query = `SELECT slot_id, course_id, day, start_time, end_time, type, room_id, instructor_id
        FROM time_slots WHERE course_id = ANY($1) ORDER BY slot_id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.StringArray(courseIDs)); err != nil {
		return nil, fmt.Errorf("list time slots by courses: %w", err)
	}
	for _, slot := range slots {
		out[slot.CourseID] = append(out[slot.CourseID], slot)
	}
	return out, nil
}

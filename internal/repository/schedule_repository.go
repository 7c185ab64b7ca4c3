package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unireg/registrar-api/internal/models"
)

// ScheduleRepository persists a student's chosen slots. Seat counts are
// derived from these rows keyed by slot id, so occupancy reflects what
// was actually selected rather than course-level enrollment.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByStudent returns a student's schedule entries.
func (r *ScheduleRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, student_id, course_id, slot_id, type, day, start_time, end_time, room_id, instructor_id, created_at, last_updated
        FROM schedule_entries WHERE student_id = $1 ORDER BY created_at`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// Upsert stores the student's slot choice for a (course, type) pair,
// replacing any previous choice for the same pair.
func (r *ScheduleRepository) Upsert(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.LastUpdated = now
	const query = `INSERT INTO schedule_entries (id, student_id, course_id, slot_id, type, day, start_time, end_time, room_id, instructor_id, created_at, last_updated)
        VALUES (:id, :student_id, :course_id, :slot_id, :type, :day, :start_time, :end_time, :room_id, :instructor_id, :created_at, :last_updated)
        ON CONFLICT (student_id, course_id, type) DO UPDATE SET
            slot_id = EXCLUDED.slot_id,
            day = EXCLUDED.day,
            start_time = EXCLUDED.start_time,
            end_time = EXCLUDED.end_time,
            room_id = EXCLUDED.room_id,
            instructor_id = EXCLUDED.instructor_id,
            last_updated = EXCLUDED.last_updated`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert schedule entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a (student, course, type) triple.
func (r *ScheduleRepository) Delete(ctx context.Context, studentID, courseID string, slotType models.SlotType) error {
	const query = `DELETE FROM schedule_entries WHERE student_id = $1 AND course_id = $2 AND type = $3`
	res, err := r.db.ExecContext(ctx, query, studentID, courseID, slotType)
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteByCourse removes every entry a student holds for a course.
// Used on withdrawal; zero rows is not an error there.
func (r *ScheduleRepository) DeleteByCourse(ctx context.Context, studentID, courseID string) error {
	const query = `DELETE FROM schedule_entries WHERE student_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		return fmt.Errorf("delete schedule entries: %w", err)
	}
	return nil
}

// CountBySlots returns the number of schedule entries per slot id.
// Slots with no entries are absent from the map.
func (r *ScheduleRepository) CountBySlots(ctx context.Context, slotIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return out, nil
	}
	const query = `SELECT slot_id, COUNT(*) AS n FROM schedule_entries WHERE slot_id = ANY($1) GROUP BY slot_id`
	rows := []struct {
		SlotID string `db:"slot_id"`
		N      int    `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.StringArray(slotIDs)); err != nil {
		return nil, fmt.Errorf("count slot occupancy: %w", err)
	}
	for _, row := range rows {
		out[row.SlotID] = row.N
	}
	return out, nil
}

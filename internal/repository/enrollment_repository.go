package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unireg/registrar-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns every non-withdrawn enrollment for a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, registered_at, created_at, last_updated
        FROM enrollments WHERE student_id = $1 AND status <> $2 ORDER BY registered_at`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, models.EnrollmentStatusWithdrawn); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListDetailsByStudent returns a student's non-withdrawn enrollments
// joined with course display data.
func (r *EnrollmentRepository) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, e.registered_at, e.created_at, e.last_updated,
        c.name AS course_name, c.credit_hours
        FROM enrollments e
        LEFT JOIN courses c ON c.course_id = e.course_id
        WHERE e.student_id = $1 AND e.status <> $2
        ORDER BY e.registered_at`
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID, models.EnrollmentStatusWithdrawn); err != nil {
		return nil, fmt.Errorf("list enrollment details: %w", err)
	}
	return details, nil
}

// FindActive returns the student's non-withdrawn enrollment in a
// course, or sql.ErrNoRows.
func (r *EnrollmentRepository) FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, registered_at, created_at, last_updated
        FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> $3`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID, models.EnrollmentStatusWithdrawn); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.RegisteredAt.IsZero() {
		enrollment.RegisteredAt = now
	}
	enrollment.CreatedAt = now
	enrollment.LastUpdated = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, status, registered_at, created_at, last_updated)
        VALUES (:id, :student_id, :course_id, :status, :registered_at, :created_at, :last_updated)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus moves an enrollment to a new status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, last_updated = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return requireRowAffected(res)
}

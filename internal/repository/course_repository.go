package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unireg/registrar-api/internal/models"
)

// CourseRepository manages persistence for catalog courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns the full catalog in id order. The graph engine builds
// its snapshot from this, so ordering must be stable.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT course_id, name, description, credit_hours, department_id, prerequisites, semesters, level
        FROM courses ORDER BY course_id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT course_id, name, description, credit_hours, department_id, prerequisites, semesters, level
        FROM courses WHERE course_id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdatePrerequisites replaces the prerequisite list of a course.
func (r *CourseRepository) UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error {
	const query = `UPDATE courses SET prerequisites = $2, last_updated = $3 WHERE course_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, pq.StringArray(prerequisites), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update prerequisites: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateLevel sets or clears the explicit level of a course.
func (r *CourseRepository) UpdateLevel(ctx context.Context, id string, level *int) error {
	const query = `UPDATE courses SET level = $2, last_updated = $3 WHERE course_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, level, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update level: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateSemesters replaces the offered-semester list of a course.
func (r *CourseRepository) UpdateSemesters(ctx context.Context, id string, semesters []string) error {
	const query = `UPDATE courses SET semesters = $2, last_updated = $3 WHERE course_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, pq.StringArray(semesters), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update semesters: %w", err)
	}
	return requireRowAffected(res)
}

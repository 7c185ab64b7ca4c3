package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unireg/registrar-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT student_id, name, email, major, gpa, credit_hours FROM students WHERE student_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// DeductCreditHours atomically consumes hours from a student's credit
// budget. The WHERE guard makes the read-check-write a single statement
// so two concurrent registrations cannot both succeed past the budget;
// it returns false when the remaining budget is insufficient.
func (r *StudentRepository) DeductCreditHours(ctx context.Context, id string, hours int) (bool, error) {
	const query = `UPDATE students SET credit_hours = credit_hours - $2
        WHERE student_id = $1 AND credit_hours >= $2`
	res, err := r.db.ExecContext(ctx, query, id, hours)
	if err != nil {
		return false, fmt.Errorf("deduct credit hours: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deduct credit hours: %w", err)
	}
	return affected > 0, nil
}

// RestoreCreditHours returns hours to a student's budget after a
// withdrawal.
func (r *StudentRepository) RestoreCreditHours(ctx context.Context, id string, hours int) error {
	const query = `UPDATE students SET credit_hours = credit_hours + $2 WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, hours)
	if err != nil {
		return fmt.Errorf("restore credit hours: %w", err)
	}
	return requireRowAffected(res)
}

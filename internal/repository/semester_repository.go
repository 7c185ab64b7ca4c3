package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/unireg/registrar-api/internal/models"
)

// SemesterRepository persists the single semester-policy row.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs a SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Get returns the current policy, or sql.ErrNoRows when none has been
// seeded yet.
func (r *SemesterRepository) Get(ctx context.Context) (*models.SemesterPolicy, error) {
	const query = `SELECT id, current_semester, academic_year, registration_enabled, registration_start, registration_end,
        withdrawal_enabled, withdrawal_start, withdrawal_end, last_updated
        FROM semester_policy ORDER BY last_updated DESC LIMIT 1`
	var policy models.SemesterPolicy
	if err := r.db.GetContext(ctx, &policy, query); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Update rewrites the policy row.
func (r *SemesterRepository) Update(ctx context.Context, policy *models.SemesterPolicy) error {
	policy.LastUpdated = time.Now().UTC()
	const query = `UPDATE semester_policy SET current_semester = :current_semester, academic_year = :academic_year,
        registration_enabled = :registration_enabled, registration_start = :registration_start, registration_end = :registration_end,
        withdrawal_enabled = :withdrawal_enabled, withdrawal_start = :withdrawal_start, withdrawal_end = :withdrawal_end,
        last_updated = :last_updated
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, policy)
	if err != nil {
		return fmt.Errorf("update semester policy: %w", err)
	}
	return requireRowAffected(res)
}

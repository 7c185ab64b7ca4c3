package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type semesterRepository interface {
	Get(ctx context.Context) (*models.SemesterPolicy, error)
	Update(ctx context.Context, policy *models.SemesterPolicy) error
}

// UpdateSemesterPolicyRequest is the admin payload for policy changes.
type UpdateSemesterPolicyRequest struct {
	CurrentSemester   models.Semester `json:"current_semester" validate:"required,oneof=Fall Spring Summer"`
	AcademicYear      string          `json:"academic_year" validate:"required"`
	RegistrationOpen  bool            `json:"registration_enabled"`
	RegistrationStart *time.Time      `json:"registration_start"`
	RegistrationEnd   *time.Time      `json:"registration_end"`
	WithdrawalOpen    bool            `json:"withdrawal_enabled"`
	WithdrawalStart   *time.Time      `json:"withdrawal_start"`
	WithdrawalEnd     *time.Time      `json:"withdrawal_end"`
}

// SemesterService answers "what term is it" and "is the window open".
type SemesterService struct {
	repo      semesterRepository
	clock     clockwork.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs a SemesterService.
func NewSemesterService(repo semesterRepository, clock clockwork.Clock, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, clock: clock, validator: validate, logger: logger}
}

// CurrentSemester returns the active term, defaulting to Fall when no
// policy has been seeded.
func (s *SemesterService) CurrentSemester(ctx context.Context) (models.Semester, error) {
	policy, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SemesterFall, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester policy")
	}
	if !models.ValidSemester(policy.CurrentSemester) {
		return models.SemesterFall, nil
	}
	return policy.CurrentSemester, nil
}

// RegistrationWindow reports whether registration is currently allowed
// and, when it is not, a human-readable reason.
func (s *SemesterService) RegistrationWindow(ctx context.Context) (bool, string, error) {
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return false, "", err
	}
	if policy == nil {
		return false, "registration is not configured", nil
	}
	open, reason := checkWindow("registration", s.clock.Now().UTC(),
		policy.RegistrationOpen, policy.RegistrationStart, policy.RegistrationEnd)
	return open, reason, nil
}

// WithdrawalWindow reports whether withdrawal is currently allowed.
func (s *SemesterService) WithdrawalWindow(ctx context.Context) (bool, string, error) {
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return false, "", err
	}
	if policy == nil {
		return false, "withdrawal is not configured", nil
	}
	open, reason := checkWindow("withdrawal", s.clock.Now().UTC(),
		policy.WithdrawalOpen, policy.WithdrawalStart, policy.WithdrawalEnd)
	return open, reason, nil
}

// GetPolicy returns the current policy document.
func (s *SemesterService) GetPolicy(ctx context.Context) (*models.SemesterPolicy, error) {
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "semester policy not configured")
	}
	return policy, nil
}

// UpdatePolicy rewrites the policy document.
func (s *SemesterService) UpdatePolicy(ctx context.Context, req UpdateSemesterPolicyRequest) (*models.SemesterPolicy, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester policy payload")
	}
	if err := validateBounds(req.RegistrationStart, req.RegistrationEnd); err != nil {
		return nil, err
	}
	if err := validateBounds(req.WithdrawalStart, req.WithdrawalEnd); err != nil {
		return nil, err
	}

	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "semester policy not configured")
	}

	policy.CurrentSemester = req.CurrentSemester
	policy.AcademicYear = req.AcademicYear
	policy.RegistrationOpen = req.RegistrationOpen
	policy.RegistrationStart = req.RegistrationStart
	policy.RegistrationEnd = req.RegistrationEnd
	policy.WithdrawalOpen = req.WithdrawalOpen
	policy.WithdrawalStart = req.WithdrawalStart
	policy.WithdrawalEnd = req.WithdrawalEnd

	if err := s.repo.Update(ctx, policy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester policy not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester policy")
	}
	s.logger.Info("semester policy updated",
		zap.String("semester", string(policy.CurrentSemester)),
		zap.String("academic_year", policy.AcademicYear))
	return policy, nil
}

func (s *SemesterService) loadPolicy(ctx context.Context) (*models.SemesterPolicy, error) {
	policy, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester policy")
	}
	return policy, nil
}

// checkWindow evaluates an enabled flag with optional [start, end)
// bounds against now.
func checkWindow(name string, now time.Time, enabled bool, start, end *time.Time) (bool, string) {
	if !enabled {
		return false, name + " is currently disabled"
	}
	if start != nil && now.Before(*start) {
		return false, fmt.Sprintf("%s opens at %s", name, start.UTC().Format(time.RFC3339))
	}
	if end != nil && !now.Before(*end) {
		return false, fmt.Sprintf("%s ended at %s", name, end.UTC().Format(time.RFC3339))
	}
	return true, ""
}

func validateBounds(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return appErrors.Clone(appErrors.ErrValidation, "window start must be before end")
	}
	return nil
}

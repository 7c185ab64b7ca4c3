package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type mockSemesterRepo struct {
	policy  *models.SemesterPolicy
	updated *models.SemesterPolicy
}

func (m *mockSemesterRepo) Get(ctx context.Context) (*models.SemesterPolicy, error) {
	if m.policy == nil {
		return nil, sql.ErrNoRows
	}
	copied := *m.policy
	return &copied, nil
}

func (m *mockSemesterRepo) Update(ctx context.Context, policy *models.SemesterPolicy) error {
	if m.policy == nil {
		return sql.ErrNoRows
	}
	m.policy = policy
	m.updated = policy
	return nil
}

func TestCurrentSemesterDefaultsToFall(t *testing.T) {
	service := NewSemesterService(&mockSemesterRepo{}, clockwork.NewFakeClock(), nil, nil)

	semester, err := service.CurrentSemester(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SemesterFall, semester)
}

func TestCurrentSemesterFromPolicy(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{ID: "policy", CurrentSemester: models.SemesterSpring}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	semester, err := service.CurrentSemester(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SemesterSpring, semester)
}

func TestRegistrationWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC))
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{
		ID:                "policy",
		CurrentSemester:   models.SemesterFall,
		RegistrationOpen:  true,
		RegistrationStart: &start,
		RegistrationEnd:   &end,
	}}
	service := NewSemesterService(repo, clock, nil, nil)

	open, reason, err := service.RegistrationWindow(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
	assert.Empty(t, reason)

	clock.Advance(5 * 24 * time.Hour)
	open, reason, err = service.RegistrationWindow(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.Contains(t, reason, "ended at")
}

func TestRegistrationWindowNotStarted(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{
		ID:                "policy",
		CurrentSemester:   models.SemesterFall,
		RegistrationOpen:  true,
		RegistrationStart: &start,
	}}
	service := NewSemesterService(repo, clock, nil, nil)

	open, reason, err := service.RegistrationWindow(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.Contains(t, reason, "opens at")
}

func TestRegistrationWindowDisabled(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{
		ID:              "policy",
		CurrentSemester: models.SemesterFall,
	}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	open, reason, err := service.RegistrationWindow(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.Contains(t, reason, "disabled")
}

func TestWithdrawalWindowOpenEnded(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{
		ID:              "policy",
		CurrentSemester: models.SemesterFall,
		WithdrawalOpen:  true,
	}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	open, _, err := service.WithdrawalWindow(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
}

func TestUpdatePolicy(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{ID: "policy", CurrentSemester: models.SemesterFall}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	updated, err := service.UpdatePolicy(context.Background(), UpdateSemesterPolicyRequest{
		CurrentSemester:  models.SemesterSpring,
		AcademicYear:     "2025-2026",
		RegistrationOpen: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SemesterSpring, updated.CurrentSemester)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "2025-2026", repo.updated.AcademicYear)
}

func TestUpdatePolicyInvalidWindow(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{ID: "policy", CurrentSemester: models.SemesterFall}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	start := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := service.UpdatePolicy(context.Background(), UpdateSemesterPolicyRequest{
		CurrentSemester:   models.SemesterFall,
		AcademicYear:      "2025-2026",
		RegistrationStart: &start,
		RegistrationEnd:   &end,
	})
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestUpdatePolicyRejectsUnknownSemester(t *testing.T) {
	repo := &mockSemesterRepo{policy: &models.SemesterPolicy{ID: "policy", CurrentSemester: models.SemesterFall}}
	service := NewSemesterService(repo, clockwork.NewFakeClock(), nil, nil)

	_, err := service.UpdatePolicy(context.Background(), UpdateSemesterPolicyRequest{
		CurrentSemester: "Winter",
		AcademicYear:    "2025-2026",
	})
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestGetPolicyNotConfigured(t *testing.T) {
	service := NewSemesterService(&mockSemesterRepo{}, clockwork.NewFakeClock(), nil, nil)

	_, err := service.GetPolicy(context.Background())
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

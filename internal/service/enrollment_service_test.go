package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	byStudent map[string][]models.Enrollment
	created   *models.Enrollment
	status    map[string]models.EnrollmentStatus
	createErr error
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return m.byStudent[studentID], nil
}

func (m *mockEnrollmentRepo) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	for _, e := range m.byStudent[studentID] {
		details = append(details, models.EnrollmentDetail{Enrollment: e})
	}
	return details, nil
}

func (m *mockEnrollmentRepo) FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	for _, e := range m.byStudent[studentID] {
		if e.CourseID == courseID && e.Status != models.EnrollmentStatusWithdrawn {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	enrollment.ID = "new-enrollment"
	enrollment.RegisteredAt = time.Now().UTC()
	m.created = enrollment
	if m.byStudent == nil {
		m.byStudent = make(map[string][]models.Enrollment)
	}
	m.byStudent[enrollment.StudentID] = append(m.byStudent[enrollment.StudentID], *enrollment)
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.EnrollmentStatus)
	}
	m.status[id] = status
	return nil
}

type mockStudentRepo struct {
	students map[string]models.Student
	deducted map[string]int
	restored map[string]int
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) DeductCreditHours(ctx context.Context, id string, hours int) (bool, error) {
	s, ok := m.students[id]
	if !ok || s.CreditHours < hours {
		return false, nil
	}
	s.CreditHours -= hours
	m.students[id] = s
	if m.deducted == nil {
		m.deducted = make(map[string]int)
	}
	m.deducted[id] += hours
	return true, nil
}

func (m *mockStudentRepo) RestoreCreditHours(ctx context.Context, id string, hours int) error {
	s := m.students[id]
	s.CreditHours += hours
	m.students[id] = s
	if m.restored == nil {
		m.restored = make(map[string]int)
	}
	m.restored[id] += hours
	return nil
}

type mockCourseRepo struct {
	courses map[string]models.Course
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockCatalog struct {
	ids map[string]struct{}
}

func (m *mockCatalog) CatalogIDs(ctx context.Context) (map[string]struct{}, error) {
	return m.ids, nil
}

type mockPolicy struct {
	semester         models.Semester
	registrationOpen bool
	regReason        string
	withdrawalOpen   bool
	wdReason         string
}

func (m *mockPolicy) CurrentSemester(ctx context.Context) (models.Semester, error) {
	if m.semester == "" {
		return models.SemesterFall, nil
	}
	return m.semester, nil
}

func (m *mockPolicy) RegistrationWindow(ctx context.Context) (bool, string, error) {
	return m.registrationOpen, m.regReason, nil
}

func (m *mockPolicy) WithdrawalWindow(ctx context.Context) (bool, string, error) {
	return m.withdrawalOpen, m.wdReason, nil
}

type mockDeptRepo struct{}

func (m *mockDeptRepo) List(ctx context.Context) ([]models.Department, error) {
	return []models.Department{{DepartmentID: "CS", Name: "Computer Science"}}, nil
}

type mockScheduleCleaner struct {
	dropped [][2]string
}

func (m *mockScheduleCleaner) DeleteByCourse(ctx context.Context, studentID, courseID string) error {
	m.dropped = append(m.dropped, [2]string{studentID, courseID})
	return nil
}

type enrollmentFixture struct {
	service     *EnrollmentService
	enrollments *mockEnrollmentRepo
	students    *mockStudentRepo
	courses     *mockCourseRepo
	policy      *mockPolicy
	cleaner     *mockScheduleCleaner
	clock       clockwork.FakeClock
}

func newEnrollmentFixture() *enrollmentFixture {
	enrollments := &mockEnrollmentRepo{byStudent: map[string][]models.Enrollment{}}
	students := &mockStudentRepo{students: map[string]models.Student{
		"stu-1": {StudentID: "stu-1", Name: "Lina", CreditHours: 12},
	}}
	courses := &mockCourseRepo{courses: map[string]models.Course{
		"CS101": {CourseID: "CS101", Name: "Intro to CS", CreditHours: 3, DepartmentID: "CS", Semesters: pq.StringArray{"Fall", "Spring"}},
		"CS201": {CourseID: "CS201", Name: "Data Structures", CreditHours: 3, DepartmentID: "CS", Prerequisites: pq.StringArray{"CS101"}, Semesters: pq.StringArray{"Fall"}},
		"CS301": {CourseID: "CS301", Name: "Algorithms", CreditHours: 4, DepartmentID: "CS", Prerequisites: pq.StringArray{"CS201"}, Semesters: pq.StringArray{"Spring"}},
	}}
	catalog := &mockCatalog{ids: map[string]struct{}{"CS101": {}, "CS201": {}, "CS301": {}}}
	policy := &mockPolicy{semester: models.SemesterFall, registrationOpen: true, withdrawalOpen: true}
	cleaner := &mockScheduleCleaner{}
	clock := clockwork.NewFakeClock()

	service := NewEnrollmentService(enrollments, students, courses, &mockDeptRepo{}, catalog, policy, cleaner,
		NewMetricsService(), 5*time.Minute, 14*24*time.Hour, clock, nil, nil)
	return &enrollmentFixture{
		service:     service,
		enrollments: enrollments,
		students:    students,
		courses:     courses,
		policy:      policy,
		cleaner:     cleaner,
		clock:       clock,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}

func TestRegisterSuccess(t *testing.T) {
	f := newEnrollmentFixture()

	enrollment, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.Equal(t, 3, f.students.deducted["stu-1"])
}

func TestRegisterStudentNotFound(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "ghost", CourseID: "CS101"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestRegisterCourseNotFound(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "NOPE"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestRegisterMissingPrerequisites(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS201"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
	assert.Contains(t, appErrors.FromError(err).Message, "CS101 (Intro to CS)")
}

func TestRegisterPrerequisiteCompleted(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusCompleted},
	}

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS201"}, models.RoleStudent)
	require.NoError(t, err)
}

func TestRegisterPendingPrerequisiteNotEnough(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending},
	}

	// Pending means in progress, not completed.
	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS201"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
}

func TestRegisterInsufficientCredits(t *testing.T) {
	f := newEnrollmentFixture()
	f.students.students["stu-1"] = models.Student{StudentID: "stu-1", CreditHours: 2}

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
	assert.Contains(t, appErrors.FromError(err).Message, "insufficient credit hours")
}

func TestRegisterAlreadyEnrolled(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending},
	}

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
	assert.Contains(t, appErrors.FromError(err).Message, "already enrolled")
}

func TestRegisterNotOfferedThisSemester(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusCompleted},
		{ID: "enr-2", StudentID: "stu-1", CourseID: "CS201", Status: models.EnrollmentStatusCompleted},
	}

	// CS301 is Spring-only; the policy says Fall.
	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS301"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
	assert.Contains(t, appErrors.FromError(err).Message, "Fall")
}

func TestRegisterWindowClosed(t *testing.T) {
	f := newEnrollmentFixture()
	f.policy.registrationOpen = false
	f.policy.regReason = "registration is currently disabled"

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleStudent)
	assertCode(t, err, appErrors.ErrPolicyClosed.Code)
}

func TestRegisterAdminBypassesWindow(t *testing.T) {
	f := newEnrollmentFixture()
	f.policy.registrationOpen = false

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleAdmin)
	require.NoError(t, err)
}

func TestRegisterCreateFailureRestoresCredits(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.createErr = sql.ErrConnDone

	_, err := f.service.Register(context.Background(), RegisterRequest{StudentID: "stu-1", CourseID: "CS101"}, models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, 3, f.students.restored["stu-1"])
}

func TestWithdrawSuccess(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending, RegisteredAt: f.clock.Now().UTC()},
	}

	enrollment, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, enrollment.Status)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, f.enrollments.status["enr-1"])
	assert.Equal(t, 3, f.students.restored["stu-1"])
	require.Len(t, f.cleaner.dropped, 1)
	assert.Equal(t, [2]string{"stu-1", "CS101"}, f.cleaner.dropped[0])
}

func TestWithdrawFailsWhenCourseLookupFails(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "GONE101", Status: models.EnrollmentStatusPending, RegisteredAt: f.clock.Now().UTC()},
	}

	_, err := f.service.Withdraw(context.Background(), "stu-1", "GONE101", models.RoleStudent)
	assertCode(t, err, appErrors.ErrInternal.Code)

	// Nothing mutated: the enrollment stays Pending and no credits move.
	assert.NotEqual(t, models.EnrollmentStatusWithdrawn, f.enrollments.status["enr-1"])
	assert.Zero(t, f.students.restored["stu-1"])
	assert.Empty(t, f.cleaner.dropped)
}

func TestWithdrawDeadlinePassed(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending, RegisteredAt: f.clock.Now().UTC()},
	}
	f.clock.Advance(14*24*time.Hour + time.Minute)

	_, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
	assert.Contains(t, appErrors.FromError(err).Message, "14 days")
}

func TestWithdrawDeadlineAppliesToAdmin(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending, RegisteredAt: f.clock.Now().UTC()},
	}
	f.clock.Advance(15 * 24 * time.Hour)

	_, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleAdmin)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
}

func TestWithdrawCompletedRejected(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusCompleted, RegisteredAt: f.clock.Now().UTC()},
	}

	_, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotEligible.Code)
}

func TestWithdrawWindowClosed(t *testing.T) {
	f := newEnrollmentFixture()
	f.policy.withdrawalOpen = false
	f.policy.wdReason = "withdrawal is currently disabled"
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending, RegisteredAt: f.clock.Now().UTC()},
	}

	_, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleStudent)
	assertCode(t, err, appErrors.ErrPolicyClosed.Code)

	// Admin bypasses the window but not the deadline.
	_, err = f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleAdmin)
	require.NoError(t, err)
}

func TestWithdrawNotEnrolled(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.Withdraw(context.Background(), "stu-1", "CS101", models.RoleStudent)
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestGetStudentEnrollmentsMemoized(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusPending},
	}

	first, err := f.service.GetStudentEnrollments(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A direct repo change is invisible until the memo expires.
	f.enrollments.byStudent["stu-1"] = nil
	second, err := f.service.GetStudentEnrollments(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, second, 1)

	f.clock.Advance(6 * time.Minute)
	third, err := f.service.GetStudentEnrollments(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Empty(t, third)
}

func TestGetAvailableCourses(t *testing.T) {
	f := newEnrollmentFixture()
	f.enrollments.byStudent["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "CS101", Status: models.EnrollmentStatusCompleted},
	}

	availability, err := f.service.GetAvailableCourses(context.Background(), "stu-1", "")
	require.NoError(t, err)
	require.Len(t, availability, 3)

	byID := make(map[string]models.CourseAvailability)
	for _, entry := range availability {
		byID[entry.CourseID] = entry
	}
	assert.False(t, byID["CS101"].CanEnroll)
	assert.Equal(t, "already enrolled", byID["CS101"].Reason)
	assert.True(t, byID["CS201"].CanEnroll)
	assert.False(t, byID["CS301"].CanEnroll) // Spring-only
	assert.Equal(t, "Computer Science", byID["CS201"].DepartmentName)
}

func TestGetAvailableCoursesUnknownSemester(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.GetAvailableCourses(context.Background(), "stu-1", "Winter")
	assertCode(t, err, appErrors.ErrValidation.Code)
}

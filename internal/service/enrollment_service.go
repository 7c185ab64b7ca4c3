package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/memo"
	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type enrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	ListDetailsByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	DeductCreditHours(ctx context.Context, id string, hours int) (bool, error)
	RestoreCreditHours(ctx context.Context, id string, hours int) error
}

type enrollmentCourseReader interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type catalogProvider interface {
	CatalogIDs(ctx context.Context) (map[string]struct{}, error)
}

type registrationPolicy interface {
	CurrentSemester(ctx context.Context) (models.Semester, error)
	RegistrationWindow(ctx context.Context) (bool, string, error)
	WithdrawalWindow(ctx context.Context) (bool, string, error)
}

type scheduleCleaner interface {
	DeleteByCourse(ctx context.Context, studentID, courseID string) error
}

// RegisterRequest is the enrollment payload.
type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// EnrollmentService runs the eligibility rule chain and owns the
// enrollment lifecycle. Rules evaluate in a fixed order and the first
// failure wins; every rejection surfaces as a structured eligibility
// error with the failed condition in the message.
type EnrollmentService struct {
	enrollments        enrollmentRepository
	students           studentRepository
	courses            enrollmentCourseReader
	departments        departmentReader
	catalog            catalogProvider
	policy             registrationPolicy
	schedules          scheduleCleaner
	studentEnrollments *memo.Cache[string, []models.EnrollmentDetail]
	metrics            *MetricsService
	clock              clockwork.Clock
	withdrawalDeadline time.Duration
	validator          *validator.Validate
	logger             *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(
	enrollments enrollmentRepository,
	students studentRepository,
	courses enrollmentCourseReader,
	departments departmentReader,
	catalog catalogProvider,
	policy registrationPolicy,
	schedules scheduleCleaner,
	metrics *MetricsService,
	enrollmentTTL time.Duration,
	withdrawalDeadline time.Duration,
	clock clockwork.Clock,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if enrollmentTTL <= 0 {
		enrollmentTTL = 5 * time.Minute
	}
	if withdrawalDeadline <= 0 {
		withdrawalDeadline = 14 * 24 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EnrollmentService{
		enrollments:        enrollments,
		students:           students,
		courses:            courses,
		departments:        departments,
		catalog:            catalog,
		policy:             policy,
		schedules:          schedules,
		studentEnrollments: memo.New[string, []models.EnrollmentDetail](enrollmentTTL, clock),
		metrics:            metrics,
		clock:              clock,
		withdrawalDeadline: withdrawalDeadline,
		validator:          validate,
		logger:             logger,
	}
	svc.studentEnrollments.OnLookup = func(hit bool) { svc.metrics.RecordCacheLookup("enrollments", hit) }
	return svc
}

// Register runs the full eligibility chain and, on success, records a
// Pending enrollment and consumes the student's credit budget. Admins
// bypass the registration window only.
func (s *EnrollmentService) Register(ctx context.Context, req RegisterRequest, actor models.UserRole) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reject(appErrors.Clone(appErrors.ErrNotFound, "student not found"))
		}
		return nil, s.fail(err, "failed to load student")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reject(appErrors.Clone(appErrors.ErrNotFound, "course not found"))
		}
		return nil, s.fail(err, "failed to load course")
	}

	catalogIDs, err := s.catalog.CatalogIDs(ctx)
	if err != nil {
		return nil, s.fail(err, "failed to load course catalog")
	}
	if _, ok := catalogIDs[course.CourseID]; !ok {
		return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible, "course is not part of the active catalog"))
	}

	history, err := s.enrollments.ListByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, s.fail(err, "failed to load enrollment history")
	}

	if missing := s.missingPrerequisites(ctx, course, history); len(missing) > 0 {
		return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible,
			"missing prerequisites: "+strings.Join(missing, ", ")))
	}

	if student.CreditHours < course.CreditHours {
		return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible,
			fmt.Sprintf("insufficient credit hours: %d required, %d remaining", course.CreditHours, student.CreditHours)))
	}

	for _, enrollment := range history {
		if enrollment.CourseID == course.CourseID {
			return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible, "already enrolled in this course"))
		}
	}

	semester, err := s.policy.CurrentSemester(ctx)
	if err != nil {
		return nil, s.fail(err, "failed to resolve current semester")
	}
	if !course.OfferedIn(semester) {
		return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible,
			fmt.Sprintf("course is not offered in the %s semester", semester)))
	}

	if actor != models.RoleAdmin {
		open, reason, err := s.policy.RegistrationWindow(ctx)
		if err != nil {
			return nil, s.fail(err, "failed to check registration window")
		}
		if !open {
			return nil, s.reject(appErrors.Clone(appErrors.ErrPolicyClosed, reason))
		}
	}

	// The conditional update re-checks the budget atomically; the read
	// above only produces a friendlier message.
	deducted, err := s.students.DeductCreditHours(ctx, student.StudentID, course.CreditHours)
	if err != nil {
		return nil, s.fail(err, "failed to reserve credit hours")
	}
	if !deducted {
		return nil, s.reject(appErrors.Clone(appErrors.ErrNotEligible,
			fmt.Sprintf("insufficient credit hours: %d required", course.CreditHours)))
	}

	enrollment := &models.Enrollment{
		StudentID: student.StudentID,
		CourseID:  course.CourseID,
		Status:    models.EnrollmentStatusPending,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if restoreErr := s.students.RestoreCreditHours(ctx, student.StudentID, course.CreditHours); restoreErr != nil {
			s.logger.Error("failed to restore credit hours after enrollment failure",
				zap.String("student_id", student.StudentID), zap.Error(restoreErr))
		}
		return nil, s.fail(err, "failed to create enrollment")
	}

	s.studentEnrollments.Delete(student.StudentID)
	s.metrics.RecordRegistration("accepted")
	s.logger.Info("student registered",
		zap.String("student_id", student.StudentID),
		zap.String("course_id", course.CourseID))
	return enrollment, nil
}

// Withdraw moves a Pending enrollment to Withdrawn, restores the credit
// budget and drops the course's schedule entries. Admins bypass the
// withdrawal window only; the 14-day deadline applies to everyone.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, courseID string, actor models.UserRole) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindActive(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, s.fail(err, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "only pending enrollments can be withdrawn")
	}

	// Resolved before any mutation: the credit restore below must never
	// be skipped because the course lookup failed mid-withdrawal.
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, s.fail(err, "failed to load course for credit restoration")
	}

	now := s.clock.Now().UTC()
	if now.Sub(enrollment.RegisteredAt.UTC()) > s.withdrawalDeadline {
		return nil, appErrors.Clone(appErrors.ErrNotEligible,
			fmt.Sprintf("withdrawal deadline passed: more than %s since registration", formatDeadline(s.withdrawalDeadline)))
	}

	if actor != models.RoleAdmin {
		open, reason, err := s.policy.WithdrawalWindow(ctx)
		if err != nil {
			return nil, s.fail(err, "failed to check withdrawal window")
		}
		if !open {
			return nil, appErrors.Clone(appErrors.ErrPolicyClosed, reason)
		}
	}

	if err := s.enrollments.UpdateStatus(ctx, enrollment.ID, models.EnrollmentStatusWithdrawn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, s.fail(err, "failed to withdraw enrollment")
	}

	if restoreErr := s.students.RestoreCreditHours(ctx, studentID, course.CreditHours); restoreErr != nil {
		s.logger.Error("failed to restore credit hours on withdrawal",
			zap.String("student_id", studentID), zap.Error(restoreErr))
	}
	if err := s.schedules.DeleteByCourse(ctx, studentID, courseID); err != nil {
		s.logger.Warn("failed to drop schedule entries on withdrawal",
			zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
	}

	enrollment.Status = models.EnrollmentStatusWithdrawn
	enrollment.LastUpdated = now
	s.studentEnrollments.Delete(studentID)
	s.logger.Info("student withdrawn",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return enrollment, nil
}

// GetStudentEnrollments returns a student's non-withdrawn enrollments
// with course display data, memoized per student.
func (s *EnrollmentService) GetStudentEnrollments(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	details, err := s.studentEnrollments.GetOrCompute(studentID, func() ([]models.EnrollmentDetail, error) {
		return s.enrollments.ListDetailsByStudent(ctx, studentID)
	})
	if err != nil {
		return nil, s.fail(err, "failed to load enrollments")
	}
	return details, nil
}

// GetAvailableCourses evaluates every catalog course against the
// student's history and reports per-course eligibility. The semester
// argument overrides the policy's current term when non-empty.
func (s *EnrollmentService) GetAvailableCourses(ctx context.Context, studentID string, semester models.Semester) ([]models.CourseAvailability, error) {
	if semester == "" {
		current, err := s.policy.CurrentSemester(ctx)
		if err != nil {
			return nil, s.fail(err, "failed to resolve current semester")
		}
		semester = current
	} else if !models.ValidSemester(semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", semester))
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, s.fail(err, "failed to load student")
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, s.fail(err, "failed to load courses")
	}
	history, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, s.fail(err, "failed to load enrollment history")
	}

	enrolled := make(map[string]struct{}, len(history))
	completed := make(map[string]struct{}, len(history))
	for _, enrollment := range history {
		enrolled[enrollment.CourseID] = struct{}{}
		if enrollment.Status == models.EnrollmentStatusCompleted {
			completed[enrollment.CourseID] = struct{}{}
		}
	}
	names := make(map[string]string, len(courses))
	for _, course := range courses {
		names[course.CourseID] = course.Name
	}
	deptNames := make(map[string]string)
	if departments, err := s.departments.List(ctx); err == nil {
		for _, dept := range departments {
			deptNames[dept.DepartmentID] = dept.Name
		}
	}

	availability := make([]models.CourseAvailability, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		entry := models.CourseAvailability{
			CourseID:       course.CourseID,
			Name:           course.Name,
			Description:    course.Description,
			CreditHours:    course.CreditHours,
			DepartmentName: deptNames[course.DepartmentID],
			Prerequisites:  append([]string{}, course.Prerequisites...),
			CanEnroll:      true,
		}
		switch {
		case !course.OfferedIn(semester):
			entry.CanEnroll = false
			entry.Reason = fmt.Sprintf("not offered in the %s semester", semester)
		case hasKey(enrolled, course.CourseID):
			entry.CanEnroll = false
			entry.Reason = "already enrolled"
		default:
			var missing []string
			for _, prereq := range course.Prerequisites {
				if !hasKey(completed, prereq) {
					missing = append(missing, describeCourse(prereq, names[prereq]))
				}
			}
			if len(missing) > 0 {
				entry.CanEnroll = false
				entry.Reason = "missing prerequisites: " + strings.Join(missing, ", ")
			}
		}
		availability = append(availability, entry)
	}
	return availability, nil
}

// missingPrerequisites lists unmet direct prerequisites as "id (name)".
func (s *EnrollmentService) missingPrerequisites(ctx context.Context, course *models.Course, history []models.Enrollment) []string {
	completed := make(map[string]struct{}, len(history))
	for _, enrollment := range history {
		if enrollment.Status == models.EnrollmentStatusCompleted {
			completed[enrollment.CourseID] = struct{}{}
		}
	}
	var missing []string
	for _, prereqID := range course.Prerequisites {
		if _, ok := completed[prereqID]; ok {
			continue
		}
		name := ""
		if prereq, err := s.courses.FindByID(ctx, prereqID); err == nil {
			name = prereq.Name
		}
		missing = append(missing, describeCourse(prereqID, name))
	}
	return missing
}

func (s *EnrollmentService) reject(err error) error {
	s.metrics.RecordRegistration("rejected")
	return err
}

func (s *EnrollmentService) fail(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func describeCourse(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, name)
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func formatDeadline(d time.Duration) string {
	if days := int(d.Hours()) / 24; days > 0 && d == time.Duration(days)*24*time.Hour {
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// EnrollmentHandler exposes registration and withdrawal endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Register godoc
// @Summary Register a student for a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role == models.RoleStudent {
		if req.StudentID != "" && req.StudentID != claims.UserID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only register themselves"))
			return
		}
		req.StudentID = claims.UserID
	}

	enrollment, err := h.enrollments.Register(c.Request.Context(), req, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw a student from a course
// @Tags Enrollments
// @Produce json
// @Param course_id path string true "Course ID"
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{course_id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := resolveStudentID(c, claims)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}

	enrollment, err := h.enrollments.Withdraw(c.Request.Context(), studentID, c.Param("course_id"), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/student/{student_id} [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	details, err := h.enrollments.GetStudentEnrollments(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// AvailableCourses godoc
// @Summary Per-course enrollment eligibility for a student
// @Tags Enrollments
// @Produce json
// @Param semester query string false "Semester override (Fall, Spring, Summer)"
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {object} response.Envelope
// @Router /courses/available [get]
func (h *EnrollmentHandler) AvailableCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := resolveStudentID(c, claims)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}

	availability, err := h.enrollments.GetAvailableCourses(c.Request.Context(), studentID, models.Semester(c.Query("semester")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability)
}

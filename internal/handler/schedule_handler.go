package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// ScheduleHandler exposes time slot selection and weekly schedule endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// SelectSlot godoc
// @Summary Select a time slot for an enrolled course
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.SelectSlotRequest true "Slot selection payload"
// @Success 201 {object} response.Envelope
// @Router /schedule/slots [post]
func (h *ScheduleHandler) SelectSlot(c *gin.Context) {
	var req service.SelectSlotRequest
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
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only edit their own schedule"))
			return
		}
		req.StudentID = claims.UserID
	}

	entry, err := h.schedules.SelectSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// RemoveSlot godoc
// @Summary Remove a selected slot from the student's schedule
// @Tags Schedule
// @Produce json
// @Param course_id path string true "Course ID"
// @Param type path string true "Slot type (Lecture, Lab, Tutorial)"
// @Param student_id query string false "Student ID (staff only)"
// @Success 204
// @Router /schedule/slots/{course_id}/{type} [delete]
func (h *ScheduleHandler) RemoveSlot(c *gin.Context) {
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

	err := h.schedules.RemoveSlot(c.Request.Context(), studentID, c.Param("course_id"), models.SlotType(c.Param("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSchedule godoc
// @Summary Weekly schedule grouped by day
// @Tags Schedule
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
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

	schedule, err := h.schedules.GetStudentSchedule(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

// GetConflicts godoc
// @Summary Pairwise time conflicts in the student's schedule
// @Tags Schedule
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {object} response.Envelope
// @Router /schedule/conflicts [get]
func (h *ScheduleHandler) GetConflicts(c *gin.Context) {
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

	conflicts, err := h.schedules.GetConflicts(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "total": len(conflicts)})
}

// GetRecommendations godoc
// @Summary Conflict-free slot recommendations across the student's enrollments
// @Tags Schedule
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {object} response.Envelope
// @Router /schedule/recommendations [get]
func (h *ScheduleHandler) GetRecommendations(c *gin.Context) {
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

	recommendations, err := h.schedules.GetRecommendations(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recommendations)
}

// ListAllSlots godoc
// @Summary Full slot catalog grouped by course
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/slots [get]
func (h *ScheduleHandler) ListAllSlots(c *gin.Context) {
	grouped, err := h.schedules.ListAllSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grouped)
}

// GetCourseSlots godoc
// @Summary Available time slots of a course grouped by type
// @Tags Schedule
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/course/{course_id}/slots [get]
func (h *ScheduleHandler) GetCourseSlots(c *gin.Context) {
	slots, err := h.schedules.GetCourseSlots(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// GetSeats godoc
// @Summary Remaining seats per time slot of a course
// @Tags Schedule
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/course/{course_id}/seats [get]
func (h *ScheduleHandler) GetSeats(c *gin.Context) {
	availability, err := h.schedules.GetSeatAvailability(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability)
}

// Export godoc
// @Summary Export the weekly schedule as CSV or PDF
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Param student_id query string false "Student ID (staff only)"
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
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

	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.schedules.ExportSchedule(c.Request.Context(), studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("schedule-%s.%s", studentID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

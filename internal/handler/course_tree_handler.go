package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/graph"
	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// CourseTreeHandler exposes the prerequisite graph endpoints.
type CourseTreeHandler struct {
	trees *service.CourseTreeService
}

// NewCourseTreeHandler constructs CourseTreeHandler.
func NewCourseTreeHandler(trees *service.CourseTreeService) *CourseTreeHandler {
	return &CourseTreeHandler{trees: trees}
}

// GetTree godoc
// @Summary Course dependency forest grouped by department
// @Tags CourseTree
// @Produce json
// @Param department query string false "Filter by department id"
// @Param level query int false "Filter by course level (1-4)"
// @Param search query string false "Search by course name or id"
// @Success 200 {object} response.Envelope
// @Router /course-tree [get]
func (h *CourseTreeHandler) GetTree(c *gin.Context) {
	filter := graph.Filter{
		DepartmentID: c.Query("department"),
		Search:       c.Query("search"),
	}
	if raw := c.Query("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 1 || level > 4 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "level must be an integer between 1 and 4"))
			return
		}
		filter.Level = level
	}

	tree, err := h.trees.BuildTree(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tree)
}

// GetCourse godoc
// @Summary Direct prerequisites and subsequents of a course
// @Tags CourseTree
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /course-tree/{course_id} [get]
func (h *CourseTreeHandler) GetCourse(c *gin.Context) {
	linkage, err := h.trees.GetCoursePrerequisites(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, linkage)
}

// Validate godoc
// @Summary Check a prerequisite chain for circular dependencies
// @Tags CourseTree
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /course-tree/validate/{course_id} [get]
func (h *CourseTreeHandler) Validate(c *gin.Context) {
	verdict, err := h.trees.ValidatePrerequisiteChain(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict)
}

// AddPrerequisite godoc
// @Summary Link a prerequisite to a course
// @Tags CourseTree
// @Produce json
// @Param course_id path string true "Course ID"
// @Param prereq_id path string true "Prerequisite course ID"
// @Success 204
// @Router /course-tree/{course_id}/prerequisites/{prereq_id} [post]
func (h *CourseTreeHandler) AddPrerequisite(c *gin.Context) {
	if err := h.trees.AddPrerequisite(c.Request.Context(), c.Param("course_id"), c.Param("prereq_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemovePrerequisite godoc
// @Summary Unlink a prerequisite from a course
// @Tags CourseTree
// @Produce json
// @Param course_id path string true "Course ID"
// @Param prereq_id path string true "Prerequisite course ID"
// @Success 204
// @Router /course-tree/{course_id}/prerequisites/{prereq_id} [delete]
func (h *CourseTreeHandler) RemovePrerequisite(c *gin.Context) {
	if err := h.trees.RemovePrerequisite(c.Request.Context(), c.Param("course_id"), c.Param("prereq_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateLevel godoc
// @Summary Set or clear the explicit level of a course
// @Tags CourseTree
// @Accept json
// @Produce json
// @Param course_id path string true "Course ID"
// @Param payload body service.UpdateLevelRequest true "Level payload"
// @Success 204
// @Router /course-tree/{course_id}/level [patch]
func (h *CourseTreeHandler) UpdateLevel(c *gin.Context) {
	var req service.UpdateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.trees.UpdateLevel(c.Request.Context(), c.Param("course_id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSemesters godoc
// @Summary Semesters a course is offered in
// @Tags CourseTree
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /course-tree/{course_id}/semesters [get]
func (h *CourseTreeHandler) GetSemesters(c *gin.Context) {
	semesters, err := h.trees.GetSemesters(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"course_id": c.Param("course_id"), "semesters": semesters})
}

// UpdateSemesters godoc
// @Summary Replace the semesters a course is offered in
// @Tags CourseTree
// @Accept json
// @Produce json
// @Param course_id path string true "Course ID"
// @Param payload body service.UpdateSemestersRequest true "Semesters payload"
// @Success 204
// @Router /course-tree/{course_id}/semesters [put]
func (h *CourseTreeHandler) UpdateSemesters(c *gin.Context) {
	var req service.UpdateSemestersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.trees.UpdateSemesters(c.Request.Context(), c.Param("course_id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

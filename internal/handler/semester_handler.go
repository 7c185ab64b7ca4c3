package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// SemesterHandler exposes semester policy endpoints.
type SemesterHandler struct {
	semesters *service.SemesterService
}

// NewSemesterHandler constructs SemesterHandler.
func NewSemesterHandler(semesters *service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesters: semesters}
}

// GetPolicy godoc
// @Summary Current semester policy and window settings
// @Tags Semester
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semester [get]
func (h *SemesterHandler) GetPolicy(c *gin.Context) {
	policy, err := h.semesters.GetPolicy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy)
}

// UpdatePolicy godoc
// @Summary Replace the semester policy
// @Tags Semester
// @Accept json
// @Produce json
// @Param payload body service.UpdateSemesterPolicyRequest true "Policy payload"
// @Success 200 {object} response.Envelope
// @Router /semester [put]
func (h *SemesterHandler) UpdatePolicy(c *gin.Context) {
	var req service.UpdateSemesterPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	policy, err := h.semesters.UpdatePolicy(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy)
}

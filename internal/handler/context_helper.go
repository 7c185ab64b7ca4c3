package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/middleware"
	"github.com/unireg/registrar-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// resolveStudentID picks the student a request targets. Students always
// act on themselves; staff may name any student through the path or
// query parameter.
func resolveStudentID(c *gin.Context, claims *models.JWTClaims) string {
	requested := c.Param("student_id")
	if requested == "" {
		requested = c.Query("student_id")
	}
	if claims == nil {
		return requested
	}
	if claims.Role == models.RoleStudent {
		return claims.UserID
	}
	if requested != "" {
		return requested
	}
	return claims.UserID
}

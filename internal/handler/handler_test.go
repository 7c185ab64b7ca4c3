package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/middleware"
	"github.com/unireg/registrar-api/internal/models"
)

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestRegisterInvalidBody(t *testing.T) {
	handler := NewEnrollmentHandler(nil)
	c, w := testContext(t, http.MethodPost, "/enrollments", []byte(`not json`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterMissingClaims(t *testing.T) {
	handler := NewEnrollmentHandler(nil)
	c, w := testContext(t, http.MethodPost, "/enrollments", []byte(`{"student_id":"stu-1","course_id":"CS101"}`))

	handler.Register(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterStudentCannotRegisterOthers(t *testing.T) {
	handler := NewEnrollmentHandler(nil)
	c, w := testContext(t, http.MethodPost, "/enrollments", []byte(`{"student_id":"stu-2","course_id":"CS101"}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.Register(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSelectSlotStudentCannotEditOthers(t *testing.T) {
	handler := NewScheduleHandler(nil)
	c, w := testContext(t, http.MethodPost, "/schedule/slots", []byte(`{"student_id":"stu-2","course_id":"CS101","slot_id":"slot-1"}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.SelectSlot(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetScheduleMissingClaims(t *testing.T) {
	handler := NewScheduleHandler(nil)
	c, w := testContext(t, http.MethodGet, "/schedule", nil)

	handler.GetSchedule(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRecommendationsMissingClaims(t *testing.T) {
	handler := NewScheduleHandler(nil)
	c, w := testContext(t, http.MethodGet, "/schedule/recommendations", nil)

	handler.GetRecommendations(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTreeRejectsBadLevel(t *testing.T) {
	handler := NewCourseTreeHandler(nil)
	c, w := testContext(t, http.MethodGet, "/course-tree?level=7", nil)

	handler.GetTree(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLevelInvalidBody(t *testing.T) {
	handler := NewCourseTreeHandler(nil)
	c, w := testContext(t, http.MethodPatch, "/course-tree/CS101/level", []byte(`{"level":"three"}`))
	c.Params = gin.Params{{Key: "course_id", Value: "CS101"}}

	handler.UpdateLevel(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePolicyInvalidBody(t *testing.T) {
	handler := NewSemesterHandler(nil)
	c, w := testContext(t, http.MethodPut, "/semester", []byte(`{`))

	handler.UpdatePolicy(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		claims *models.JWTClaims
		param  string
		query  string
		want   string
	}{
		{
			name:   "student always self",
			claims: &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent},
			query:  "stu-2",
			want:   "stu-1",
		},
		{
			name:   "staff targets query param",
			claims: &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin},
			query:  "stu-2",
			want:   "stu-2",
		},
		{
			name:   "staff path param wins over query",
			claims: &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin},
			param:  "stu-3",
			query:  "stu-2",
			want:   "stu-3",
		},
		{
			name:   "staff defaults to self",
			claims: &models.JWTClaims{UserID: "ins-1", Role: models.RoleInstructor},
			want:   "ins-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/schedule"
			if tt.query != "" {
				target += "?student_id=" + tt.query
			}
			c, _ := testContext(t, http.MethodGet, target, nil)
			if tt.param != "" {
				c.Params = gin.Params{{Key: "student_id", Value: tt.param}}
			}
			assert.Equal(t, tt.want, resolveStudentID(c, tt.claims))
		})
	}
}

func TestMetricsHandlerUnavailable(t *testing.T) {
	handler := NewMetricsHandler(nil)
	c, w := testContext(t, http.MethodGet, "/metrics", nil)

	handler.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

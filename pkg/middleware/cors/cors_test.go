package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, "/api/v1/schedule/export", nil)
	require.NoError(t, err)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	c.Request = req

	New(origins)(c)
	return w
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	w := perform(t, []string{"https://portal.unireg.edu"}, http.MethodGet, "https://portal.unireg.edu")

	assert.Equal(t, "https://portal.unireg.edu", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSkipsUnknownOrigin(t *testing.T) {
	w := perform(t, []string{"https://portal.unireg.edu"}, http.MethodGet, "https://evil.example.com")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSExposesDownloadFilename(t *testing.T) {
	w := perform(t, nil, http.MethodGet, "https://portal.unireg.edu")

	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	w := perform(t, nil, http.MethodOptions, "https://portal.unireg.edu")

	assert.Equal(t, http.StatusNoContent, w.Code)
}

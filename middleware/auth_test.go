package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"superbryn/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject": c.GetString("subject"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func TestRequireRoleAcceptsMatchingRole(t *testing.T) {
	r := protectedRouter("mentor", "admin")
	token, err := utils.GenerateToken("mentor-1", "mentor", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mentor-1")
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	r := protectedRouter("admin")
	token, err := utils.GenerateToken("caller-1", "user", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRejectsMissingOrBadToken(t *testing.T) {
	r := protectedRouter("user")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expired tokens fail validation.
	expired, err := utils.GenerateToken("caller-1", "user", -time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/pkg/jwt"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
)

func newRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := jwt.NewManager("secret", "vreels", time.Minute)
	require.NoError(t, err)
	auth := middleware.NewAuthMiddleware(m)

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetUserID(c))
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireRole(middleware.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, m
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(middleware.AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, m := newRouter(t)
	token, _, err := m.GenerateAccessToken("u1", "alice", nil)
	require.NoError(t, err)

	w := do(r, "/me", middleware.BearerPrefix+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", middleware.BearerPrefix+"garbage").Code)
}

func TestRequireRole(t *testing.T) {
	r, m := newRouter(t)

	user, _, err := m.GenerateAccessToken("u1", "alice", []string{"member"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", middleware.BearerPrefix+user).Code)

	admin, _, err := m.GenerateAccessToken("u2", "root", []string{middleware.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, "/admin", middleware.BearerPrefix+admin).Code)
}

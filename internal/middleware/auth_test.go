package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"uat-portal-api/internal/auth"
	"uat-portal-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuthMiddleware_MissingToken(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r := protectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	token, err := auth.GenerateToken(&models.User{ID: "u-1", Username: "alice", Role: models.RoleStakeholder, Country: "SG"})
	require.NoError(t, err)

	r := protectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "u-1")
}

func TestJWTAuthMiddleware_TokenInQueryParam(t *testing.T) {
	token, err := auth.GenerateToken(&models.User{ID: "u-2", Username: "bob", Role: models.RoleAdmin})
	require.NoError(t, err)

	r := protectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	stakeholder, err := auth.GenerateToken(&models.User{ID: "u-1", Username: "alice", Role: models.RoleStakeholder})
	require.NoError(t, err)
	admin, err := auth.GenerateToken(&models.User{ID: "u-2", Username: "root", Role: models.RoleAdmin})
	require.NoError(t, err)

	r := protectedRouter(RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+stakeholder)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

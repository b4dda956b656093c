package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techhub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRoleRouter mounts one protected endpoint per role behind Authenticate.
func setupRoleRouter(s *Service) *gin.Engine {
	r := gin.New()
	protected := r.Group("/", s.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.ID, "role": claims.Role})
	})
	for _, role := range models.Roles {
		protected.GET("/"+string(role), RequireRole(role), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}
	return r
}

func performRequest(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, s *Service, id string, role models.Role) string {
	t.Helper()
	token, err := s.IssueToken(&models.User{ID: id, Email: id + "@x.com", Role: role})
	require.NoError(t, err)
	return token
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthenticate(t *testing.T) {
	s, _, cfg := setupTestService(t)
	r := setupRoleRouter(s)

	t.Run("No token", func(t *testing.T) {
		w := performRequest(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access denied. No token provided.", messageOf(t, w))
	})

	t.Run("Not a bearer header", func(t *testing.T) {
		w := performRequest(r, "/me", "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Scheme is case-insensitive", func(t *testing.T) {
		token := tokenFor(t, s, "5", models.RoleStudent)
		for _, scheme := range []string{"bearer", "BEARER", "Bearer"} {
			w := performRequest(r, "/me", scheme+" "+token)
			assert.Equal(t, http.StatusOK, w.Code, scheme)
		}
	})

	t.Run("Other schemes and bare tokens are rejected", func(t *testing.T) {
		token := tokenFor(t, s, "5", models.RoleStudent)
		for _, header := range []string{"Basic xyz", token, "Bearer", "Bearer   "} {
			w := performRequest(r, "/me", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
			assert.Equal(t, "Access denied. No token provided.", messageOf(t, w))
		}
	})

	t.Run("Garbage token", func(t *testing.T) {
		w := performRequest(r, "/me", "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token.", messageOf(t, w))
	})

	t.Run("Expired token", func(t *testing.T) {
		expired, err := GenerateJWT(&models.User{ID: "1", Role: models.RoleAdmin}, cfg.JwtSecret, -time.Minute)
		require.NoError(t, err)
		w := performRequest(r, "/me", "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		w := performRequest(r, "/me", "Bearer "+tokenFor(t, s, "5", models.RoleStudent))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"5","role":"student"}`, w.Body.String())
	})

	t.Run("Missing secret is a server error", func(t *testing.T) {
		token := tokenFor(t, s, "5", models.RoleStudent)
		cfg.JwtSecret = ""
		defer func() { cfg.JwtSecret = testSecret }()

		w := performRequest(r, "/me", "Bearer "+token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server configuration error: JWT secret is missing.", messageOf(t, w))
	})
}

func TestRequireRole(t *testing.T) {
	s, _, _ := setupTestService(t)
	r := setupRoleRouter(s)

	admin := "Bearer " + tokenFor(t, s, "1", models.RoleAdmin)
	for _, role := range models.Roles {
		w := performRequest(r, "/"+string(role), admin)
		assert.Equal(t, http.StatusNoContent, w.Code, "admin satisfies %s", role)
	}

	student := "Bearer " + tokenFor(t, s, "2", models.RoleStudent)
	assert.Equal(t, http.StatusNoContent, performRequest(r, "/student", student).Code)

	w := performRequest(r, "/mentor", student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Mentor only.", messageOf(t, w))

	w = performRequest(r, "/admin", "Bearer "+tokenFor(t, s, "3", models.RoleMentor))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin only.", messageOf(t, w))

	w = performRequest(r, "/partner", student)
	assert.Equal(t, "Access denied. Internship Partner only.", messageOf(t, w))
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(models.RoleStudent), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := performRequest(r, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

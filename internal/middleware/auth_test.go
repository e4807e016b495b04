package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	userRepo "anoa.com/gooddeeds/internal/modules/user/repository"
	"anoa.com/gooddeeds/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setup(t *testing.T) (*gin.Engine, userRepo.UserRepository) {
	gin.SetMode(gin.TestMode)
	repo := userRepo.NewUserRepository(testutil.NewDB(t))
	m := NewAuthMiddleware(repo, secret)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", m.RequireAuth(), m.RequireSuperAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, repo
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, _ := setup(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer "+sign(t, "u1", time.Now().Add(-time.Minute))).Code)

	w := do(r, "/me", "Bearer "+sign(t, "u1", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = do(r, "/me?token="+sign(t, "u2", time.Now().Add(time.Hour)), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())
}

func TestRequireSuperAdmin(t *testing.T) {
	r, repo := setup(t)
	ctx := context.Background()

	adminRole, err := repo.FindRoleByName(ctx, entity.RoleSuperAdmin)
	require.NoError(t, err)
	userRole, err := repo.FindRoleByName(ctx, entity.RoleUser)
	require.NoError(t, err)

	admin := &entity.User{Name: "root", Email: "root@example.com", PasswordHash: "x", RoleID: &adminRole.ID}
	require.NoError(t, repo.Create(ctx, admin))
	member := &entity.User{Name: "m", Email: "m@example.com", PasswordHash: "x", RoleID: &userRole.ID}
	require.NoError(t, repo.Create(ctx, member))

	exp := time.Now().Add(time.Hour)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+sign(t, admin.ID.String(), exp)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+sign(t, member.ID.String(), exp)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "Bearer "+sign(t, "not-a-uuid", exp)).Code)
}

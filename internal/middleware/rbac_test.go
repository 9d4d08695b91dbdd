package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushub/portal-api/internal/models"
)

func rbacContext(claims *models.JWTClaims, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	return c, rec
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	c, _ := rbacContext(&models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
}

func TestRBACRejectsOtherRole(t *testing.T) {
	c, rec := rbacContext(&models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	c, rec := rbacContext(nil, nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfAccess(t *testing.T) {
	params := gin.Params{{Key: "id", Value: "u1"}}
	c, _ := rbacContext(&models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, params)

	RBAC(string(models.RoleAdmin), RoleSelf)(c)

	assert.False(t, c.IsAborted())
}

func TestRBACSelfAccessWrongUser(t *testing.T) {
	params := gin.Params{{Key: "id", Value: "someone-else"}}
	c, rec := rbacContext(&models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, params)

	RBAC(string(models.RoleAdmin), RoleSelf)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

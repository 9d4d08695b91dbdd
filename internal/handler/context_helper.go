package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

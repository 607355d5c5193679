package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/response"
)

// RequireRole checks that the session role is one of the given roles.
// This gate is advisory: the upstream re-checks authorization on every
// admin write, and its rejection wins.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-account-service/internal/token"
	resp "go-account-service/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyUser   = "user"
)

// AuthToken resolves the Bearer token through the validator and stores
// the owner on the context. With requireStaff set, non-staff owners get
// 403. Every failure mode responds with the same unauthorized message.
func AuthToken(v *token.Issuer, requireStaff bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		u, err := v.Validate(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		if requireStaff && !u.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyUserID, u.ID)
		c.Set(KeyUser, u)
		c.Next()
	}
}

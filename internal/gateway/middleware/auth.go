package middleware

import (
	"net/http"
	"strings"

	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

const OperatorKey = "operator"

// JWTAuth requires a valid bearer token signed by issuer and exposes the
// operator name under OperatorKey.
func JWTAuth(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			unauthorized(c, "Missing bearer token")
			return
		}

		claims, err := issuer.ParseToken(token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   "UNAUTHORIZED",
	})
}

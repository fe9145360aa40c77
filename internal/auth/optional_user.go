package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalUser sets a user id in context without enforcing auth.
// - If X-User-Id is missing, it falls back to "demo-user".
// - Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		c.Set(CtxUserID, uid)

		c.Next()
	}
}

package middleware

import (
	"slices"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRoles grants access iff the authenticated user's role is in
// the allowed set. Must run after the auth middleware, an
// unauthenticated request never reaches the role check.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("user")
		if !ok {
			c.AbortWithStatusJSON(auth.ErrUnauthenticated.Status, gin.H{
				"success": false,
				"message": auth.ErrUnauthenticated.Message,
			})
			return
		}

		user := v.(*model.User)

		if !slices.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(auth.ErrForbidden.Status, gin.H{
				"success": false,
				"message": auth.ErrForbidden.Message,
			})
			return
		}

		c.Next()
	}
}

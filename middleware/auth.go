package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"
	"bookdrop/library-api/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware validates the session token from the auth_token
// cookie (or a bearer header) and loads the account behind it. Fails
// closed: anything wrong with the token ends the request with a 401
// before any role check runs.
func NewAuthMiddleware(db *gorm.DB, tokens *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(auth.ErrUnauthenticated.Status, gin.H{
				"success": false,
				"message": auth.ErrUnauthenticated.Message,
			})
			return
		}

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Session token is invalid or expired",
			})
			return
		}

		// The account may have been pruned since the token was minted
		var user model.User
		err = db.Where("id = ?", userID).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "User not found",
				})
				return
			}

			zap.L().Error("Failed to load user for session", zap.Error(err))

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
			})
			return
		}

		if !user.AccountVerified {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Account is not verified",
			})
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}

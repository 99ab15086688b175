package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthLogout only clears the cookie. There is no server-side session
// table, outstanding tokens simply run out their expiry.
func (a *API) AuthLogout(c *gin.Context) {
	clearSessionCookie(c)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

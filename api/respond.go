package api

import (
	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// fail serializes a domain error in the one shape every error leaves
// the API in: {success:false, message}.
func fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(auth.StatusOf(err), gin.H{
		"success": false,
		"message": err.Error(),
	})
}

func setSessionCookie(c *gin.Context, token string) {
	maxAge := viper.GetInt("jwt.expiry_hours") * 3600
	c.SetCookie("auth_token", token, maxAge, "/", "", viper.GetBool("host.ssl.enabled"), true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", viper.GetBool("host.ssl.enabled"), true)
}

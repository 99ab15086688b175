package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetPasswordBody struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (a *API) AuthPasswordReset(c *gin.Context) {
	token := c.Param("token")

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	user, sessionToken, err := a.Auth.ResetPassword(token, data.Password, data.ConfirmPassword)
	if err != nil {
		fail(c, err)
		return
	}

	setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password Reset Successfully.",
		"user":    user,
		"token":   sessionToken,
	})
}

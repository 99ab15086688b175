package api

import (
	"fmt"
	"net/http"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func (a *API) AuthPasswordForgot(c *gin.Context) {
	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	if err := a.Auth.ForgotPassword(data.Email); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Email sent to %s successfully", data.Email),
	})
}

package api

import (
	"fmt"
	"net/http"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthLogin(c *gin.Context) {
	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	user, token, err := a.Auth.Login(data.Email, data.Password)
	if err != nil {
		fail(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Welcome back, %s", user.Name),
		"user":    user,
		"token":   token,
	})
}

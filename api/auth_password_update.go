package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type changePasswordBody struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (a *API) AuthPasswordUpdate(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	err := a.Auth.ChangePassword(userID, data.OldPassword, data.NewPassword, data.ConfirmNewPassword)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed successfully",
	})
}

package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type addAdminBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserAddAdmin creates a pre-verified admin account. Only reachable by
// an existing admin, so no OTP round-trip here.
func (a *API) UserAddAdmin(c *gin.Context) {
	var data addAdminBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	user, err := a.Auth.RegisterAdmin(data.Name, data.Email, data.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin registered successfully",
		"user":    user,
	})
}

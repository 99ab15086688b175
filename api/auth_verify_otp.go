package api

import (
	"net/http"
	"strconv"

	"bookdrop/library-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyOTPBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (a *API) AuthVerifyOTP(c *gin.Context) {
	var data verifyOTPBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	if data.Email == "" || data.OTP == "" {
		fail(c, auth.ErrMissingField)
		return
	}

	otp, err := strconv.ParseInt(data.OTP, 10, 64)
	if err != nil {
		fail(c, auth.ErrInvalidOtp)
		return
	}

	user, token, err := a.Auth.VerifyOTP(data.Email, otp)
	if err != nil {
		fail(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account verified successfully",
		"user":    user,
		"token":   token,
	})
}

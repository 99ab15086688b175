package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserList(c *gin.Context) {
	var users []model.User

	err := a.DB.
		Where("account_verified = ?", true).
		Order("created_at desc").
		Find(&users).Error
	if err != nil {
		zap.L().Error("Failed to fetch users", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

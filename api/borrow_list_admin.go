package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) BorrowListAdmin(c *gin.Context) {
	var borrows []model.Borrow

	err := a.DB.
		Preload("User").
		Preload("Book").
		Order("created_at desc").
		Find(&borrows).Error
	if err != nil {
		zap.L().Error("Failed to fetch borrow records", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"borrowedBooks": borrows,
	})
}

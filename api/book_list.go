package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) BookList(c *gin.Context) {
	var books []model.Book

	err := a.DB.Order("created_at desc").Find(&books).Error
	if err != nil {
		zap.L().Error("Failed to fetch books", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"books":   books,
	})
}

package api

import (
	"errors"
	"net/http"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) BookDelete(c *gin.Context) {
	bookID := c.Param("id")
	if bookID == "" {
		fail(c, auth.ErrMissingField)
		return
	}

	var book model.Book
	err := a.DB.Where("id = ?", bookID).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Book not found",
			})
			return
		}

		zap.L().Error("Failed to look up book", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	if err := a.DB.Delete(&book).Error; err != nil {
		zap.L().Error("Failed to delete book", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book deleted successfully",
	})
}

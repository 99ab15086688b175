package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/library"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type returnBorrowBody struct {
	Email string `json:"email"`
}

func (a *API) BorrowReturn(c *gin.Context) {
	bookID := c.Param("bookId")
	if bookID == "" {
		fail(c, auth.ErrMissingField)
		return
	}

	var data returnBorrowBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		fail(c, auth.ErrMissingField)
		return
	}

	var user model.User
	err := a.DB.Where("email = ? AND account_verified = ?", data.Email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, auth.ErrNotFound)
			return
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	var borrow model.Borrow
	err = a.DB.
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", user.ID, bookID).
		First(&borrow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "No outstanding borrow found for this book and user",
			})
			return
		}

		zap.L().Error("Failed to look up borrow", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	now := time.Now()
	fine := library.FineFor(borrow.DueDate, now, viper.GetFloat64("borrow.fine_per_day"))

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&borrow).Updates(map[string]any{
			"return_date": now,
			"fine":        fine,
		}).Error
		if err != nil {
			return err
		}

		return tx.Model(model.Book{}).
			Where("id = ?", bookID).
			Updates(map[string]any{
				"quantity":     gorm.Expr("quantity + 1"),
				"availability": true,
			}).Error
	})
	if err != nil {
		zap.L().Error("Failed to record return", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	message := "The book has been returned successfully. The total charges are the book price."
	if fine > 0 {
		message = fmt.Sprintf("The book has been returned successfully. The total charges, including a fine, are %.2f", fine+borrow.Price)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"fine":    fine,
	})
}

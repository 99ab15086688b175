package api

import (
	"errors"
	"net/http"
	"time"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/library"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordBorrowBody struct {
	Email string `json:"email"`
}

// BorrowRecord checks a book out to a user. Quantity, availability and
// the borrow record move in one transaction so a parallel checkout of
// the last copy can't oversell it.
func (a *API) BorrowRecord(c *gin.Context) {
	bookID := c.Param("id")
	if bookID == "" {
		fail(c, auth.ErrMissingField)
		return
	}

	var data recordBorrowBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
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

	var user model.User
	err = a.DB.Where("email = ? AND account_verified = ?", data.Email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, auth.ErrNotFound)
			return
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	if book.Quantity <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Book is not available",
		})
		return
	}

	var outstanding int64
	err = a.DB.Model(model.Borrow{}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", user.ID, book.ID).
		Count(&outstanding).Error
	if err != nil {
		zap.L().Error("Failed to check outstanding borrows", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	if outstanding > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Book is already borrowed by this user",
		})
		return
	}

	borrowID, err := gonanoid.Generate(bookIDCharset, 16)
	if err != nil {
		zap.L().Error("Failed to generate borrow ID", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	now := time.Now()
	borrow := model.Borrow{
		ID:         borrowID,
		UserID:     user.ID,
		BookID:     book.ID,
		BorrowDate: now,
		DueDate:    library.DueDate(now, viper.GetInt("borrow.period_days")),
		Price:      book.Price,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model.Book{}).
			Where("id = ? AND quantity > 0", book.ID).
			Updates(map[string]any{
				"quantity":     gorm.Expr("quantity - 1"),
				"availability": gorm.Expr("quantity - 1 > 0"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(&borrow).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Book is not available",
			})
			return
		}

		zap.L().Error("Failed to record borrow", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Borrowed book recorded successfully",
		"borrow":  borrow,
	})
}

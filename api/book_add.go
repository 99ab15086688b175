package api

import (
	"net/http"

	"bookdrop/library-api/internal/auth"
	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const bookIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

type addBookBody struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (a *API) BookAdd(c *gin.Context) {
	var data addBookBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err))
		fail(c, auth.ErrMissingField)
		return
	}

	if data.Title == "" || data.Author == "" || data.Quantity <= 0 {
		fail(c, auth.ErrMissingField)
		return
	}

	bookID, err := gonanoid.Generate(bookIDCharset, 16)
	if err != nil {
		zap.L().Error("Failed to generate book ID", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	book := model.Book{
		ID:           bookID,
		Title:        data.Title,
		Author:       data.Author,
		Description:  data.Description,
		Price:        data.Price,
		Quantity:     data.Quantity,
		Availability: true,
	}

	if err := a.DB.Create(&book).Error; err != nil {
		zap.L().Error("Failed to create book", zap.Error(err))
		fail(c, auth.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book added successfully",
		"book":    book,
	})
}

package api

import (
	"net/http"

	"bookdrop/library-api/internal/model"

	"github.com/gin-gonic/gin"
)

func (a *API) AuthMe(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

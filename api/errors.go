package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps typed domain errors onto HTTP statuses. Anything not in
// the closed set is a server error.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var linkedErr *domain.AlreadyLinkedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &linkedErr):
		c.JSON(http.StatusConflict, gin.H{"error": linkedErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

type listRequest struct {
	Name     string `form:"name"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=10" binding:"min=1,max=100"`
}

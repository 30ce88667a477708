package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookmarkd/bookmarkd/internal/social"
)

// statusOK is the uniform success body for the follow and like toggles
func statusOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusError is the uniform failure body for the follow and like toggles.
// Per the boundary contract these answer 200 with a status field rather
// than an HTTP error status.
func statusError(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "error"})
}

// fail translates a domain error into an HTTP response for the non-toggle
// endpoints
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, social.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, social.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, social.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

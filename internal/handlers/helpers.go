package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"numbersapi/internal/services"
)

// respondError maps service errors to status codes. Anything unknown is
// logged and reported as fallback with a 500.
func respondError(c *gin.Context, tag string, err error, fallback string) {
	var rejected *services.CodeRejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": rejected.Reason})
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidPurpose),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrValueOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrSerialConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate serial. Try again."})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrIssueInProgress):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "A code is already being sent, try again shortly"})
	case errors.Is(err, services.ErrDeliveryFailed):
		log.Printf("%s %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Code was created but could not be delivered, request a new one"})
	default:
		log.Printf("%s error: %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses at the boundary.
func respondError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var transitionErr *apperrors.InvalidTransitionError
	var gatewayErr *apperrors.PaymentGatewayError
	var authErr *apperrors.AuthenticationError
	var persistenceErr *apperrors.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "validation failed",
			"violations": validationErr.Violations,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid status transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Reason})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &persistenceErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

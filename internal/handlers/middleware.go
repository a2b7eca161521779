package handlers

import (
	"net/http"
	"strings"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/auth"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	contextUserID   = "user_id"
	contextUserRole = "user_role"
)

// RequestID attaches an id to every request, generating one when the caller
// did not send one, so log lines across services can be correlated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// AuthRequired validates the bearer token and puts the authenticated
// identity into the request context. Core operations receive the user id as
// an explicit parameter from here on; nothing reads ambient request state.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is required"})
			return
		}

		claims, err := auth.ParseToken(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUserRole, claims.Role)
		c.Next()
	}
}

// StaffOnly guards fulfilment endpoints. Must run after AuthRequired.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(contextUserRole) != models.RoleStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(contextUserID)
}

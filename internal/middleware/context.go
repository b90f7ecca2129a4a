package middleware

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/models"
)

const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	UserKey      = "user"

	RequestIDHeader = "X-Request-ID"
)

// UserID returns the authenticated user's id, or the nil id on routes that
// do not run Authenticate.
func UserID(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}

// CurrentUser returns the user loaded by RequireAdmin, if any.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

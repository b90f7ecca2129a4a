package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/models"
)

const (
	msgTokenMissing = "token missing"
	msgTokenInvalid = "invalid or expired token"
	msgAccessDenied = "access denied"
)

// UserResolver loads the user behind a verified token.
type UserResolver interface {
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Authenticate accepts "Bearer <token>" or a bare token in the
// Authorization header and stores the user id in the context.
func Authenticate(tokens auth.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, msgTokenInvalid)
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.UserID())
		if err != nil {
			abort(c, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		c.Set(UserIDKey, id)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// RequireAdmin loads the user on every request and rejects anyone whose
// stored role is not admin. It must run after Authenticate.
func RequireAdmin(users UserResolver, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserID(c)
		if id.IsZero() {
			abort(c, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		user, err := users.Me(c.Request.Context(), id.Hex())
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				abort(c, http.StatusForbidden, msgAccessDenied)
				return
			}
			logger.Error().
				Err(err).
				Str("request_id", RequestID(c)).
				Str("user_id", id.Hex()).
				Msg("could not load user for admin check")
			abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if !user.Role.IsAdmin() {
			abort(c, http.StatusForbidden, msgAccessDenied)
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

package repository

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"ecommerce-backend/internal/apperror"
)

const (
	defaultTimeout = 5 * time.Second
	queryTimeout   = 10 * time.Second
)

// translate maps driver errors onto the application taxonomy.
func translate(err error, notFound, conflict, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound(notFound)
	case mongo.IsDuplicateKeyError(err) && conflict != "":
		return apperror.Conflict(conflict)
	default:
		return apperror.Internal(op, errors.WithStack(err))
	}
}

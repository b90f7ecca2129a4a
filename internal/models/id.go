package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
)

// ParseID converts a hex id. Malformed ids are reported as notFound so
// callers cannot tell them apart from missing records.
func ParseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(notFound)
	}
	return id, nil
}

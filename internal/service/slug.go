package service

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
)

// Slugify lowercases and hyphenates name into a URL-safe identifier.
func Slugify(name string) string {
	return slug.Make(name)
}

type slugTaken func(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error)

// uniqueSlug probes base, base-1, base-2, ... until taken reports a free slug.
// exclude lets a product keep its own slug on update.
func uniqueSlug(ctx context.Context, name string, exclude primitive.ObjectID, taken slugTaken) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", apperror.Validation("name", "Name must contain letters or digits")
	}

	candidate := base
	for n := 1; ; n++ {
		used, err := taken(ctx, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

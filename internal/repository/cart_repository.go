package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

const msgCartNotFound = "Cart not found"

// CartRepository keeps one cart document per user and mutates it only with
// single-document atomic operators.
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(collection *mongo.Collection) *CartRepository {
	return &CartRepository{collection: collection}
}

func (r *CartRepository) FindByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var cart models.Cart
	if err := r.collection.FindOne(ctx, bson.M{"user": user}).Decode(&cart); err != nil {
		return nil, translate(err, msgCartNotFound, "", "could not fetch cart")
	}
	return &cart, nil
}

// IncrementItem adds qty to an existing line. It reports false when the
// cart has no line for product.
func (r *CartRepository) IncrementItem(ctx context.Context, user, product primitive.ObjectID, qty int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user": user, "items.product": product},
		bson.M{
			"$inc": bson.M{"items.$.quantity": qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, apperror.Internal("could not update cart", errors.WithStack(err))
	}
	return res.MatchedCount > 0, nil
}

// AppendItem pushes a new line, creating the cart if the user has none. It
// reports false when a line for the product already exists.
func (r *CartRepository) AppendItem(ctx context.Context, user primitive.ObjectID, item models.CartItem) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user": user, "items.product": bson.M{"$ne": item.Product}},
		bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"status":     models.CartActive,
				"expires_at": now.Add(models.CartTTL),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// the cart exists and already holds the product, so the filter
		// missed and the upsert collided with the unique user index
		return false, nil
	}
	if err != nil {
		return false, apperror.Internal("could not update cart", errors.WithStack(err))
	}
	return true, nil
}

// RemoveItem pulls the line for product. It reports false when there was
// no such line or no cart.
func (r *CartRepository) RemoveItem(ctx context.Context, user, product primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user": user, "items.product": product},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product": product}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, apperror.Internal("could not update cart", errors.WithStack(err))
	}
	return res.MatchedCount > 0, nil
}

// SetItemQuantity overwrites the quantity of an existing line.
func (r *CartRepository) SetItemQuantity(ctx context.Context, user, product primitive.ObjectID, qty int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user": user, "items.product": product},
		bson.M{"$set": bson.M{"items.$.quantity": qty, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, apperror.Internal("could not update cart", errors.WithStack(err))
	}
	return res.MatchedCount > 0, nil
}

// Clear empties the cart but keeps the document. It reports false when the
// user has no cart.
func (r *CartRepository) Clear(ctx context.Context, user primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user": user},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, apperror.Internal("could not clear cart", errors.WithStack(err))
	}
	return res.MatchedCount > 0, nil
}

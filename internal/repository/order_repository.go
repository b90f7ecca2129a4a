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

const msgOrderNotFound = "Order not found"

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, order)
	return translate(err, msgOrderNotFound, "", "could not save order")
}

func (r *OrderRepository) FindByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"buyer": buyer})
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

// FindContainingProducts lists orders with at least one line for a product in ids.
func (r *OrderRepository) FindContainingProducts(ctx context.Context, ids []primitive.ObjectID) ([]models.Order, error) {
	if len(ids) == 0 {
		return []models.Order{}, nil
	}
	return r.find(ctx, bson.M{"products.product": bson.M{"$in": ids}})
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var order models.Order
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"order_status": status, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		return nil, translate(err, msgOrderNotFound, "", "could not update order status")
	}
	return &order, nil
}

// MarkReconciliation flags an order whose stock or cart follow-up failed.
func (r *OrderRepository) MarkReconciliation(ctx context.Context, id primitive.ObjectID, marker models.Reconciliation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reconciliation": marker, "updated_at": time.Now()}},
	)
	if err != nil {
		return apperror.Internal("could not mark order for reconciliation", errors.WithStack(err))
	}
	return nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperror.Internal("could not fetch orders", errors.WithStack(err))
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperror.Internal("error decoding orders", errors.WithStack(err))
	}
	return orders, nil
}

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

const (
	msgCategoryNotFound = "Category not found"
	msgCategoryNotOwned = "Category not found or you are not authorized to modify this category"
	msgCategoryExists   = "Category already exists"
)

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(collection *mongo.Collection) *CategoryRepository {
	return &CategoryRepository{collection: collection}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, category)
	return translate(err, msgCategoryNotFound, msgCategoryExists, "could not create category")
}

// Exists reports whether any category already uses name or slug.
func (r *CategoryRepository) Exists(ctx context.Context, name, slug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": []bson.M{{"name": name}, {"slug": slug}}}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, apperror.Internal("could not check category", errors.WithStack(err))
	}
	return n > 0, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	return r.find(ctx, bson.M{})
}

func (r *CategoryRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Category, error) {
	return r.find(ctx, bson.M{"created_by": owner})
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error) {
	out := make(map[primitive.ObjectID]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	categories, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for i := range categories {
		out[categories[i].ID] = &categories[i]
	}
	return out, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var category models.Category
	if err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&category); err != nil {
		return nil, translate(err, msgCategoryNotFound, "", "could not fetch category")
	}
	return &category, nil
}

// UpdateOwned renames the category only when id and owner match together.
func (r *CategoryRepository) UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, name, slug string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var category models.Category
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "created_by": owner},
		bson.M{"$set": bson.M{"name": name, "slug": slug, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&category)
	if err != nil {
		return nil, translate(err, msgCategoryNotOwned, msgCategoryExists, "could not update category")
	}
	return &category, nil
}

func (r *CategoryRepository) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "created_by": owner})
	if err != nil {
		return apperror.Internal("could not delete category", errors.WithStack(err))
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound(msgCategoryNotOwned)
	}
	return nil
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apperror.Internal("could not fetch categories", errors.WithStack(err))
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, apperror.Internal("error decoding categories", errors.WithStack(err))
	}
	return categories, nil
}

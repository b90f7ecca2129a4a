package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

const (
	msgProductNotFound = "Product not found"
	msgProductNotOwned = "Product not found or you are not authorized to modify this product"
	// MaxListAll caps the unpaginated public listing.
	MaxListAll = 1000
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, product)
	return translate(err, msgProductNotFound, "A product with this slug already exists", "could not create product")
}

// SlugExists reports whether slug is taken by any product other than exclude.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, apperror.Internal("could not check product slug", errors.WithStack(err))
	}
	return n > 0, nil
}

// FindByID fetches a product by id
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id}, msgProductNotFound)
}

// FindOwned matches id and owner in a single predicate.
func (r *ProductRepository) FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id, "created_by": owner}, msgProductNotOwned)
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, msgProductNotFound)
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M, notFound string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		return nil, translate(err, notFound, "", "could not fetch product")
	}
	return &product, nil
}

// FindByIDs returns the products that still exist, keyed by id.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := make(map[primitive.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *ProductRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"created_by": owner}, newestFirst())
}

// IDsByOwner lists the ids of every product owner created.
func (r *ProductRepository) IDsByOwner(ctx context.Context, owner primitive.ObjectID) ([]primitive.ObjectID, error) {
	products, err := r.find(ctx, bson.M{"created_by": owner}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Find applies a ProductFilter, newest first.
func (r *ProductRepository) Find(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	return r.find(ctx, BuildProductFilter(f), newestFirst())
}

// FindRelated lists up to limit products of categoryID other than productID.
func (r *ProductRepository) FindRelated(ctx context.Context, productID, categoryID primitive.ObjectID, limit int64) ([]models.Product, error) {
	filter := bson.M{
		"category": categoryID,
		"_id":      bson.M{"$ne": productID},
	}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

// FindAll lists products without their photo reference. pageSize <= 0 returns
// the first MaxListAll products. The count runs concurrently with the page.
func (r *ProductRepository) FindAll(ctx context.Context, page, pageSize int) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	findOptions := newestFirst().SetProjection(bson.M{"photo": 0})
	if page > 0 && pageSize > 0 {
		findOptions.SetSkip(int64((page - 1) * pageSize))
		findOptions.SetLimit(int64(pageSize))
	} else {
		findOptions.SetLimit(MaxListAll)
	}

	var (
		total    int64
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, bson.M{})
		if err != nil {
			return apperror.Internal("could not count products", errors.WithStack(err))
		}
		total = n
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = r.find(gctx, bson.M{}, findOptions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperror.Internal("could not fetch products", errors.WithStack(err))
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperror.Internal("error decoding products", errors.WithStack(err))
	}
	return products, nil
}

// UpdateOwned overwrites the editable fields of p, matching on id and owner
// together. An empty Photo keeps the stored reference.
func (r *ProductRepository) UpdateOwned(ctx context.Context, p *models.Product) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"quantity":    p.Quantity,
		"shipping":    p.Shipping,
		"updated_at":  time.Now(),
	}
	if p.Photo != "" {
		set["photo"] = p.Photo
	}

	var updated models.Product
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.ID, "created_by": p.CreatedBy},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err, msgProductNotOwned, "A product with this slug already exists", "could not update product")
	}
	return &updated, nil
}

// DeleteOwned removes the product matching id and owner and returns it.
func (r *ProductRepository) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var deleted models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id, "created_by": owner}).Decode(&deleted)
	if err != nil {
		return nil, translate(err, msgProductNotOwned, "", "could not delete product")
	}
	return &deleted, nil
}

// DecrementStock applies every decrement as one unordered bulk write. Each
// update only matches while enough stock remains, so the returned count is
// lower than len(decs) when a concurrent order drained a product first.
func (r *ProductRepository) DecrementStock(ctx context.Context, decs []models.StockDecrement) (int64, error) {
	if len(decs) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(decs))
	for _, d := range decs {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": d.Product, "quantity": bson.M{"$gte": d.Quantity}}).
			SetUpdate(bson.M{
				"$inc": bson.M{"quantity": -d.Quantity},
				"$set": bson.M{"updated_at": now},
			}))
	}

	res, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var matched int64
		if res != nil {
			matched = res.MatchedCount
		}
		return matched, apperror.Internal("could not update stock", errors.WithStack(err))
	}
	return res.MatchedCount, nil
}

// BuildProductFilter turns the optional predicates into a query. A zero
// filter matches everything.
func BuildProductFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
		}
	}

	if len(f.CategoryIDs) > 0 {
		filter["category"] = bson.M{"$in": f.CategoryIDs}
	}

	if f.PriceRange != nil {
		filter["price"] = bson.M{"$gte": f.PriceRange.Min, "$lte": f.PriceRange.Max}
	}

	if f.CreatedBy != nil {
		filter["created_by"] = *f.CreatedBy
	}

	return filter
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

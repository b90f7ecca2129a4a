package service

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/models"
)

// The interfaces below are satisfied by the Mongo repositories in
// internal/repository and by the in-memory fakes used in tests.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.BuyerSummary, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Exists(ctx context.Context, name, slug string) (bool, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, name, slug string) (*models.Category, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error
}

// ProductReader is the read side of the product store used by the cart and
// order engines.
type ProductReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
}

type ProductRepository interface {
	ProductReader
	Create(ctx context.Context, product *models.Product) error
	SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error)
	FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Product, error)
	IDsByOwner(ctx context.Context, owner primitive.ObjectID) ([]primitive.ObjectID, error)
	Find(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	FindRelated(ctx context.Context, productID, categoryID primitive.ObjectID, limit int64) ([]models.Product, error)
	FindAll(ctx context.Context, page, pageSize int) ([]models.Product, int64, error)
	UpdateOwned(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, decs []models.StockDecrement) (int64, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error)
	IncrementItem(ctx context.Context, user, product primitive.ObjectID, qty int) (bool, error)
	AppendItem(ctx context.Context, user primitive.ObjectID, item models.CartItem) (bool, error)
	RemoveItem(ctx context.Context, user, product primitive.ObjectID) (bool, error)
	SetItemQuantity(ctx context.Context, user, product primitive.ObjectID, qty int) (bool, error)
	Clear(ctx context.Context, user primitive.ObjectID) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindContainingProducts(ctx context.Context, ids []primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	MarkReconciliation(ctx context.Context, id primitive.ObjectID, marker models.Reconciliation) error
}

type PhotoStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

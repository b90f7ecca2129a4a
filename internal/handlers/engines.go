package handlers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/service"
)

// The engine interfaces are implemented by the types in internal/service.

type AuthEngine interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	ForgotPassword(ctx context.Context, email, answer, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type CatalogEngine interface {
	CreateCategory(ctx context.Context, name string, owner primitive.ObjectID) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, name string, owner primitive.ObjectID) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string, owner primitive.ObjectID) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListCategoriesByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	CreateProduct(ctx context.Context, f models.ProductFields, photo *service.Photo, owner primitive.ObjectID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, f models.ProductFields, photo *service.Photo, owner primitive.ObjectID) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string, owner primitive.ObjectID) error
	ListProductsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.ProductDetail, error)
	ListAllProducts(ctx context.Context, page, pageSize int) (*service.ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.ProductDetail, error)
	FilterProducts(ctx context.Context, in service.FilterInput) ([]models.Product, error)
	AdminFilterProducts(ctx context.Context, owner primitive.ObjectID, keyword string) ([]models.ProductDetail, error)
	SearchProducts(ctx context.Context, keyword string) ([]models.Product, error)
	RelatedProducts(ctx context.Context, productID, categoryID string, limit int) ([]models.ProductDetail, error)
	ProductPhoto(ctx context.Context, productID string) (io.ReadCloser, string, error)
}

type CartEngine interface {
	AddItem(ctx context.Context, userID primitive.ObjectID, productID string, qty int) (*models.CartView, error)
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, productID string) (*models.CartView, error)
	SetItemQuantity(ctx context.Context, userID primitive.ObjectID, productID string, qty int) (*models.CartView, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type OrderEngine interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, in service.PlaceOrderInput) (*models.Order, error)
	ListByBuyer(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.AdminOrderView, error)
	ListForOwner(ctx context.Context, owner primitive.ObjectID) ([]models.AdminOrderView, error)
	SetStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	Statuses() []models.OrderStatus
}

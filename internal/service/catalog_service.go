package service

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

const (
	msgCategoryNotOwned = "Category not found or you are not authorized to modify this category"
	msgCategoryExists   = "Category already exists"
	msgProductNotFound  = "Product not found"
	msgProductNotOwned  = "Product not found or you are not authorized to modify this product"
	msgPhotoNotFound    = "Photo not found"

	DefaultRelatedLimit = 4
)

// Photo is an uploaded product image. Size is checked before Body is read.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CatalogService struct {
	categories CategoryRepository
	products   ProductRepository
	photos     PhotoStore
	logger     zerolog.Logger
}

func NewCatalogService(categories CategoryRepository, products ProductRepository, photos PhotoStore, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		photos:     photos,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// ---- categories ----

func (s *CatalogService) CreateCategory(ctx context.Context, name string, owner primitive.ObjectID) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "Name is required")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, apperror.Validation("name", "Name must contain letters or digits")
	}

	exists, err := s.categories.Exists(ctx, name, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict(msgCategoryExists)
	}

	category := &models.Category{Name: name, Slug: slug, CreatedBy: owner}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string, owner primitive.ObjectID) (*models.Category, error) {
	categoryID, err := models.ParseID(id, msgCategoryNotOwned)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "Name is required")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, apperror.Validation("name", "Name must contain letters or digits")
	}
	return s.categories.UpdateOwned(ctx, categoryID, owner, name, slug)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string, owner primitive.ObjectID) error {
	categoryID, err := models.ParseID(id, msgCategoryNotOwned)
	if err != nil {
		return err
	}
	return s.categories.DeleteOwned(ctx, categoryID, owner)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CatalogService) ListCategoriesByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Category, error) {
	return s.categories.FindByOwner(ctx, owner)
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.categories.FindBySlug(ctx, slug)
}

// ---- products ----

// checkProductFields reports the first missing or out-of-range field in the
// order name, description, price, category, quantity.
func (s *CatalogService) checkProductFields(ctx context.Context, f models.ProductFields) (primitive.ObjectID, error) {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return primitive.NilObjectID, apperror.Validation("name", "Name is Required")
	case strings.TrimSpace(f.Description) == "":
		return primitive.NilObjectID, apperror.Validation("description", "Description is Required")
	case f.Price == nil:
		return primitive.NilObjectID, apperror.Validation("price", "Price is Required")
	case strings.TrimSpace(f.Category) == "":
		return primitive.NilObjectID, apperror.Validation("category", "Category is Required")
	case f.Quantity == nil:
		return primitive.NilObjectID, apperror.Validation("quantity", "Quantity is Required")
	case *f.Price < 0:
		return primitive.NilObjectID, apperror.Validation("price", "Price must not be negative")
	case *f.Quantity < 0:
		return primitive.NilObjectID, apperror.Validation("quantity", "Quantity must not be negative")
	}

	categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(f.Category))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("category", "Category is invalid")
	}
	found, err := s.categories.FindByIDs(ctx, []primitive.ObjectID{categoryID})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, ok := found[categoryID]; !ok {
		return primitive.NilObjectID, apperror.Validation("category", "Category does not exist")
	}
	return categoryID, nil
}

func checkPhoto(photo *Photo) error {
	if photo != nil && photo.Size > models.MaxPhotoSize {
		return apperror.Validation("photo", "Photo should be less than 1mb")
	}
	return nil
}

func (s *CatalogService) uploadPhoto(ctx context.Context, photo *Photo) (string, error) {
	if photo == nil {
		return "", nil
	}
	return s.photos.Upload(ctx, photo.Filename, photo.ContentType, photo.Body)
}

func (s *CatalogService) CreateProduct(ctx context.Context, f models.ProductFields, photo *Photo, owner primitive.ObjectID) (*models.Product, error) {
	categoryID, err := s.checkProductFields(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := checkPhoto(photo); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(f.Name)
	slug, err := uniqueSlug(ctx, name, primitive.NilObjectID, s.products.SlugExists)
	if err != nil {
		return nil, err
	}

	ref, err := s.uploadPhoto(ctx, photo)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(f.Description),
		Price:       *f.Price,
		Category:    categoryID,
		Quantity:    *f.Quantity,
		Photo:       ref,
		Shipping:    f.Shipping != nil && *f.Shipping,
		CreatedBy:   owner,
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.discardPhoto(ctx, ref)
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces every editable field and derives a fresh unique
// slug from the new name. Without a new photo or shipping flag the stored
// ones are kept.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, f models.ProductFields, photo *Photo, owner primitive.ObjectID) (*models.Product, error) {
	productID, err := models.ParseID(id, msgProductNotOwned)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.checkProductFields(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := checkPhoto(photo); err != nil {
		return nil, err
	}

	current, err := s.products.FindOwned(ctx, productID, owner)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(f.Name)
	slug, err := uniqueSlug(ctx, name, productID, s.products.SlugExists)
	if err != nil {
		return nil, err
	}

	shipping := current.Shipping
	if f.Shipping != nil {
		shipping = *f.Shipping
	}

	ref, err := s.uploadPhoto(ctx, photo)
	if err != nil {
		return nil, err
	}

	updated, err := s.products.UpdateOwned(ctx, &models.Product{
		ID:          productID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(f.Description),
		Price:       *f.Price,
		Category:    categoryID,
		Quantity:    *f.Quantity,
		Photo:       ref,
		Shipping:    shipping,
		CreatedBy:   owner,
	})
	if err != nil {
		s.discardPhoto(ctx, ref)
		return nil, err
	}
	if ref != "" && current.Photo != "" && current.Photo != ref {
		s.discardPhoto(ctx, current.Photo)
	}
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string, owner primitive.ObjectID) error {
	productID, err := models.ParseID(id, msgProductNotOwned)
	if err != nil {
		return err
	}
	deleted, err := s.products.DeleteOwned(ctx, productID, owner)
	if err != nil {
		return err
	}
	s.discardPhoto(ctx, deleted.Photo)
	return nil
}

// discardPhoto removes a stored photo. Failures only leave an orphaned file,
// so they are logged and swallowed.
func (s *CatalogService) discardPhoto(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.photos.Delete(ctx, ref); err != nil {
		s.logger.Warn().Err(err).Str("photo", ref).Msg("could not delete product photo")
	}
}

func (s *CatalogService) ListProductsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.ProductDetail, error) {
	products, err := s.products.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, products)
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ListAllProducts is the public catalog listing. A non-positive page means
// the first page; a non-positive pageSize returns everything up to the
// repository cap.
func (s *CatalogService) ListAllProducts(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	products, total, err := s.products.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.ProductDetail, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	details, err := s.withCategories(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

type FilterInput struct {
	Keyword    string
	Categories []string
	// Price holds [min, max] when set.
	Price []float64
}

func (s *CatalogService) FilterProducts(ctx context.Context, in FilterInput) ([]models.Product, error) {
	filter := models.ProductFilter{Keyword: in.Keyword}

	for _, raw := range in.Categories {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if err != nil {
			return nil, apperror.Validation("checked", "Category id is invalid")
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}

	switch len(in.Price) {
	case 0:
	case 2:
		if in.Price[0] > in.Price[1] {
			return nil, apperror.Validation("radio", "Price range minimum exceeds maximum")
		}
		filter.PriceRange = &models.PriceRange{Min: in.Price[0], Max: in.Price[1]}
	default:
		return nil, apperror.Validation("radio", "Price range must have a minimum and a maximum")
	}

	return s.products.Find(ctx, filter)
}

// AdminFilterProducts searches only the products owned by owner.
func (s *CatalogService) AdminFilterProducts(ctx context.Context, owner primitive.ObjectID, keyword string) ([]models.ProductDetail, error) {
	products, err := s.products.Find(ctx, models.ProductFilter{Keyword: keyword, CreatedBy: &owner})
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, products)
}

// SearchProducts matches keyword against name and description. An empty
// keyword returns every product.
func (s *CatalogService) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	return s.products.Find(ctx, models.ProductFilter{Keyword: keyword})
}

func (s *CatalogService) RelatedProducts(ctx context.Context, productID, categoryID string, limit int) ([]models.ProductDetail, error) {
	pid, err := models.ParseID(productID, msgProductNotFound)
	if err != nil {
		return nil, err
	}
	cid, err := models.ParseID(categoryID, "Category not found")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	products, err := s.products.FindRelated(ctx, pid, cid, int64(limit))
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, products)
}

// ProductPhoto opens the stored photo of a product. The caller closes the
// returned reader.
func (s *CatalogService) ProductPhoto(ctx context.Context, productID string) (io.ReadCloser, string, error) {
	pid, err := models.ParseID(productID, msgProductNotFound)
	if err != nil {
		return nil, "", err
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, "", err
	}
	if product.Photo == "" {
		return nil, "", apperror.NotFound(msgPhotoNotFound)
	}
	return s.photos.Open(ctx, product.Photo)
}

func (s *CatalogService) withCategories(ctx context.Context, products []models.Product) ([]models.ProductDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.ProductDetail, len(products))
	for i, p := range products {
		details[i] = models.ProductDetail{Product: p, Category: categories[p.Category]}
	}
	return details, nil
}

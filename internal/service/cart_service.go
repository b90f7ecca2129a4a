package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

const (
	msgCartNotFound     = "Cart not found"
	msgCartItemNotFound = "Item not found in cart"
)

type CartService struct {
	carts    CartRepository
	products ProductReader
	logger   zerolog.Logger
}

func NewCartService(carts CartRepository, products ProductReader, logger zerolog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger.With().Str("component", "cart").Logger(),
	}
}

// AddItem adds qty of a product to the user's cart, creating the cart on
// first use. A product already in the cart keeps its original price
// snapshot and only has its quantity raised.
func (s *CartService) AddItem(ctx context.Context, userID primitive.ObjectID, productID string, qty int) (*models.CartView, error) {
	if qty < 1 {
		return nil, apperror.Validation("quantity", "Quantity must be at least 1")
	}
	pid, err := models.ParseID(productID, msgProductNotFound)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	// Increment first. When there is no line yet, push one; a concurrent
	// add of the same product makes the push miss, so increment again.
	incremented, err := s.carts.IncrementItem(ctx, userID, pid, qty)
	if err != nil {
		return nil, err
	}
	if !incremented {
		appended, err := s.carts.AppendItem(ctx, userID, models.CartItem{
			Product:         pid,
			Quantity:        qty,
			PriceAtAddition: product.Price,
		})
		if err != nil {
			return nil, err
		}
		if !appended {
			if _, err := s.carts.IncrementItem(ctx, userID, pid, qty); err != nil {
				return nil, err
			}
		}
	}

	return s.GetCart(ctx, userID)
}

// GetCart resolves every line to its live product. A user without a cart
// gets an empty view.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if apperror.Is(err, apperror.KindNotFound) {
		return &models.CartView{Items: []models.ResolvedCartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.Product
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.ResolvedCartItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = models.ResolvedCartItem{
			Product:         products[item.Product],
			ProductID:       item.Product.Hex(),
			Quantity:        item.Quantity,
			PriceAtAddition: item.PriceAtAddition,
		}
	}

	expires := cart.ExpiresAt
	return &models.CartView{
		ID:         &cart.ID,
		Items:      items,
		Status:     cart.Status,
		ExpiresAt:  &expires,
		TotalPrice: models.TotalPrice(cart.Items),
	}, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, productID string) (*models.CartView, error) {
	pid, err := models.ParseID(productID, msgCartItemNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.removeLine(ctx, userID, pid); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) removeLine(ctx context.Context, userID, pid primitive.ObjectID) error {
	removed, err := s.carts.RemoveItem(ctx, userID, pid)
	if err != nil {
		return err
	}
	if !removed {
		return s.missingLine(ctx, userID)
	}
	return nil
}

// missingLine tells an absent cart apart from an absent line.
func (s *CartService) missingLine(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.carts.FindByUser(ctx, userID); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.NotFound(msgCartNotFound)
		}
		return err
	}
	return apperror.NotFound(msgCartItemNotFound)
}

// SetItemQuantity overwrites a line's quantity. Zero removes the line. The
// price snapshot is left untouched.
func (s *CartService) SetItemQuantity(ctx context.Context, userID primitive.ObjectID, productID string, qty int) (*models.CartView, error) {
	if qty < 0 {
		return nil, apperror.Validation("quantity", "Quantity must not be negative")
	}
	pid, err := models.ParseID(productID, msgCartItemNotFound)
	if err != nil {
		return nil, err
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound(msgCartNotFound)
		}
		return nil, err
	}
	if _, ok := cart.Item(pid); !ok {
		return nil, apperror.NotFound(msgCartItemNotFound)
	}

	product, err := s.products.FindByID(ctx, pid)
	if apperror.Is(err, apperror.KindNotFound) {
		if _, err := s.carts.RemoveItem(ctx, userID, pid); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", userID.Hex()).Str("product_id", pid.Hex()).Msg("purged cart line for deleted product")
		return nil, apperror.NotFound(msgProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	if qty > product.Quantity {
		return nil, apperror.Inventory(fmt.Sprintf("Only %d items available in stock", product.Quantity), product.Quantity)
	}

	updated, err := s.carts.SetItemQuantity(ctx, userID, pid, qty)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperror.NotFound(msgCartItemNotFound)
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the cart. Having no cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.Clear(ctx, userID)
	return err
}

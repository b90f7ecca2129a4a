package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

const msgOrderNotFound = "Order not found"

// totalTolerance is the largest accepted gap between the client's declared
// total and the computed one before a warning is logged.
var totalTolerance = decimal.RequireFromString("0.01")

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	Lines         []OrderLine
	DeclaredTotal float64
	PaymentMethod string
}

// CartClearer is the part of the cart store the order engine needs.
type CartClearer interface {
	Clear(ctx context.Context, user primitive.ObjectID) (bool, error)
}

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
	carts    CartClearer
	logger   zerolog.Logger
	now      func() time.Time
	newRef   func(time.Time) string
}

func NewOrderService(orders OrderRepository, products ProductRepository, users UserRepository, carts CartClearer, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		logger:   logger.With().Str("component", "orders").Logger(),
		now:      time.Now,
		newRef:   newOrderRef,
	}
}

func newOrderRef(t time.Time) string {
	return t.UTC().Format("20060102150405") + "-" + uuid.NewString()
}

// PlaceOrder validates the lines against live stock, stores the order with
// a server-computed total, then decrements stock and clears the cart. The
// order is kept even when those follow-up writes fail; it is marked for
// reconciliation instead.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Lines) == 0 {
		return nil, apperror.Validation("cart", "Cart is empty")
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, apperror.Validation("paymentMethod", "Payment method is required")
	}

	buyer, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(buyer.Address) == "" {
		return nil, apperror.Validation("address", "Please add a delivery address to your profile")
	}

	ids := make([]primitive.ObjectID, len(in.Lines))
	requested := make(map[primitive.ObjectID]int, len(in.Lines))
	for i, line := range in.Lines {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, apperror.Validation("product", fmt.Sprintf("Invalid product id %q", line.ProductID))
		}
		if line.Quantity < 1 {
			return nil, apperror.Validation("quantity", "Quantity must be at least 1")
		}
		ids[i] = id
		requested[id] += line.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Lines))
	decs := make([]models.StockDecrement, 0, len(requested))
	for i, line := range in.Lines {
		product, ok := products[ids[i]]
		if !ok {
			return nil, apperror.NotFound(fmt.Sprintf("Product %s not found", ids[i].Hex()))
		}
		// lines for the same product draw on one stock count
		want, staged := requested[product.ID]
		if product.Quantity < want {
			return nil, apperror.Inventory(
				fmt.Sprintf("Insufficient stock for %s. Available: %d", product.Name, product.Quantity),
				product.Quantity,
			)
		}

		total = total.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderItem{
			Product:         product.ID,
			Quantity:        line.Quantity,
			PriceAtAddition: product.Price,
			Name:            product.Name,
			Photo:           product.Photo,
		})
		if staged {
			decs = append(decs, models.StockDecrement{Product: product.ID, Quantity: want})
			delete(requested, product.ID)
		}
	}
	total = total.Round(2)

	declared := decimal.NewFromFloat(in.DeclaredTotal)
	if declared.Sub(total).Abs().GreaterThan(totalTolerance) {
		s.logger.Warn().
			Str("user_id", userID.Hex()).
			Str("declared", declared.StringFixed(2)).
			Str("computed", total.StringFixed(2)).
			Msg("declared order total differs from computed total")
	}

	payment := models.Payment{Method: method, Status: models.PaymentPaid, TransactionID: models.NoTransactionID}
	if strings.EqualFold(method, models.PaymentMethodCOD) {
		payment.Status = models.PaymentPending
	}

	order := &models.Order{
		OrderRef:        s.newRef(s.now()),
		Products:        items,
		Payment:         payment,
		Buyer:           buyer.ID,
		TotalAmount:     total.InexactFloat64(),
		ShippingAddress: buyer.Address,
		OrderStatus:     models.OrderNotProcessed,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	var problems []string
	matched, err := s.products.DecrementStock(ctx, decs)
	switch {
	case err != nil:
		problems = append(problems, "stock update failed: "+err.Error())
	case matched < int64(len(decs)):
		problems = append(problems, fmt.Sprintf("stock updated for %d of %d products", matched, len(decs)))
	}
	if _, err := s.carts.Clear(ctx, buyer.ID); err != nil {
		problems = append(problems, "cart clear failed: "+err.Error())
	}

	if len(problems) > 0 {
		s.markForReconciliation(ctx, order, strings.Join(problems, "; "))
	}

	s.logger.Info().
		Str("order_id", order.ID.Hex()).
		Str("order_ref", order.OrderRef).
		Str("total", total.StringFixed(2)).
		Msg("order placed")
	return order, nil
}

func (s *OrderService) markForReconciliation(ctx context.Context, order *models.Order, reason string) {
	marker := models.Reconciliation{
		Status:   models.ReconciliationPending,
		Reason:   reason,
		MarkedAt: s.now(),
	}
	order.Reconciliation = &marker

	log := s.logger.Error().Str("order_id", order.ID.Hex()).Str("reason", reason)
	if err := s.orders.MarkReconciliation(ctx, order.ID, marker); err != nil {
		log.AnErr("mark_error", err).Msg("order needs reconciliation and could not be marked")
		return
	}
	log.Msg("order marked for reconciliation")
}

func (s *OrderService) ListByBuyer(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByBuyer(ctx, userID)
}

// ListAll returns every order with its buyer's name and email attached.
func (s *OrderService) ListAll(ctx context.Context) ([]models.AdminOrderView, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withBuyers(ctx, orders)
}

// ListForOwner returns the orders that contain at least one product
// created by owner.
func (s *OrderService) ListForOwner(ctx context.Context, owner primitive.ObjectID) ([]models.AdminOrderView, error) {
	ids, err := s.products.IDsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindContainingProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.withBuyers(ctx, orders)
}

func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	id, err := models.ParseID(orderID, msgOrderNotFound)
	if err != nil {
		return nil, err
	}
	parsed, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperror.Validation("status", fmt.Sprintf("Invalid order status %q", status))
	}
	return s.orders.UpdateStatus(ctx, id, parsed)
}

func (s *OrderService) Statuses() []models.OrderStatus {
	out := make([]models.OrderStatus, len(models.OrderStatuses))
	copy(out, models.OrderStatuses)
	return out
}

func (s *OrderService) withBuyers(ctx context.Context, orders []models.Order) ([]models.AdminOrderView, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]bool, len(orders))
	for _, o := range orders {
		if !seen[o.Buyer] {
			seen[o.Buyer] = true
			ids = append(ids, o.Buyer)
		}
	}
	buyers, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.AdminOrderView, len(orders))
	for i, o := range orders {
		views[i] = models.AdminOrderView{Order: o, Buyer: buyers[o.Buyer]}
	}
	return views, nil
}

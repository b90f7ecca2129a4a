package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/models"
)

type orderFixture struct {
	svc      *OrderService
	orders   *fakeOrders
	products *fakeProducts
	users    *fakeUsers
	carts    *fakeCarts
	buyer    *models.User
	logs     *bytes.Buffer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   &fakeOrders{},
		products: &fakeProducts{},
		users:    newFakeUsers(),
		carts:    newFakeCarts(),
		logs:     &bytes.Buffer{},
	}
	f.buyer = &models.User{Name: "Ada", Email: "ada@example.com", Address: "1 Main St", Role: models.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), f.buyer))

	f.svc = NewOrderService(f.orders, f.products, f.users, f.carts, zerolog.New(f.logs))
	return f
}

func TestPlaceOrderUsesComputedTotal(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 33.33, Quantity: 10})

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 3}},
		DeclaredTotal: 99.99,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 99.99, order.TotalAmount)
	assert.Equal(t, models.PaymentPaid, order.Payment.Status)
	assert.Equal(t, models.NoTransactionID, order.Payment.TransactionID)
	assert.NotContains(t, f.logs.String(), "differs")
}

func TestPlaceOrderWithinToleranceDoesNotWarn(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 100, Quantity: 10})

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		DeclaredTotal: 99.99,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.TotalAmount)
	assert.NotContains(t, f.logs.String(), "differs")
}

func TestPlaceOrderWarnsOnTotalMismatch(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 100, Quantity: 10})

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		DeclaredTotal: 5.00,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.TotalAmount)
	assert.Contains(t, f.logs.String(), "declared order total differs from computed total")
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})

	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 3}},
		PaymentMethod: "cod",
	})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindInventory, appErr.Kind)
	assert.Equal(t, 2, appErr.Available)

	assert.Equal(t, 2, f.products.get(p.ID).Quantity)
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrderSumsLinesForSameProduct(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 10})

	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines: []OrderLine{
			{ProductID: p.ID.Hex(), Quantity: 6},
			{ProductID: p.ID.Hex(), Quantity: 6},
		},
		PaymentMethod: "cod",
	})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindInventory, appErr.Kind)
	assert.Equal(t, 10, appErr.Available)

	assert.Equal(t, 10, f.products.get(p.ID).Quantity)
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrderStagesOneDecrementPerProduct(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 10})

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines: []OrderLine{
			{ProductID: p.ID.Hex(), Quantity: 4},
			{ProductID: p.ID.Hex(), Quantity: 6},
		},
		DeclaredTotal: 10,
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	assert.Len(t, order.Products, 2)
	assert.Equal(t, 10.0, order.TotalAmount)
	assert.Nil(t, order.Reconciliation)
	assert.Equal(t, 0, f.products.get(p.ID).Quantity)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})
	line := []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}}

	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{PaymentMethod: "cod"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{Lines: line})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 0}},
		PaymentMethod: "cod",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	homeless := &models.User{Name: "Bo", Email: "bo@example.com"}
	require.NoError(t, f.users.Create(context.Background(), homeless))
	_, err = f.svc.PlaceOrder(context.Background(), homeless.ID, PlaceOrderInput{Lines: line, PaymentMethod: "cod"})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "address", appErr.Field)
}

func TestPlaceOrderMarksReconciliationWhenStockFails(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})
	f.products.decrementErr = errors.New("connection reset")

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	require.NotNil(t, order.Reconciliation)
	assert.Equal(t, models.ReconciliationPending, order.Reconciliation.Status)

	stored := f.orders.byID(order.ID)
	require.NotNil(t, stored.Reconciliation)
	assert.Contains(t, stored.Reconciliation.Reason, "stock update failed")
}

func TestPlaceOrderMarksReconciliationWhenCartClearFails(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})
	f.carts.clearErr = errors.New("timeout")

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.products.get(p.ID).Quantity)
	require.NotNil(t, f.orders.byID(order.ID).Reconciliation)
}

func TestPlaceOrderRef(t *testing.T) {
	f := newOrderFixture(t)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})

	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^20240301123000-[0-9a-f-]{36}$`, order.OrderRef)
}

func TestSetStatus(t *testing.T) {
	f := newOrderFixture(t)
	p := f.products.add(models.Product{Name: "Pen", Price: 1, Quantity: 2})
	order, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: p.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)

	updated, err := f.svc.SetStatus(context.Background(), order.ID.Hex(), "Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.OrderStatus)

	_, err = f.svc.SetStatus(context.Background(), order.ID.Hex(), "Lost")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.SetStatus(context.Background(), primitive.NewObjectID().Hex(), "Shipped")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	assert.Equal(t, models.OrderStatuses, f.svc.Statuses())
}

func TestAdminOrderViews(t *testing.T) {
	f := newOrderFixture(t)
	adminA, adminB := primitive.NewObjectID(), primitive.NewObjectID()
	pa := f.products.add(models.Product{Name: "A", Price: 1, Quantity: 5, CreatedBy: adminA})
	pb := f.products.add(models.Product{Name: "B", Price: 1, Quantity: 5, CreatedBy: adminB})

	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: pa.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(context.Background(), f.buyer.ID, PlaceOrderInput{
		Lines:         []OrderLine{{ProductID: pb.ID.Hex(), Quantity: 1}},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)

	all, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Buyer)
	assert.Equal(t, "ada@example.com", all[0].Buyer.Email)

	forA, err := f.svc.ListForOwner(context.Background(), adminA)
	require.NoError(t, err)
	require.Len(t, forA, 1)
	assert.Equal(t, pa.ID, forA[0].Products[0].Product)

	mine, err := f.svc.ListByBuyer(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

// TestCheckoutFlow walks a buyer from registration to a cash-on-delivery
// order and checks stock and cart afterwards.
func TestCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	products := &fakeProducts{}
	carts := newFakeCarts()
	orders := &fakeOrders{}

	authSvc := NewAuthService(users, plainHasher{}, auth.NewJWTMaker("secret", time.Minute), true, zerolog.Nop())
	cartSvc := NewCartService(carts, products, zerolog.Nop())
	orderSvc := NewOrderService(orders, products, users, carts, zerolog.Nop())

	in := registerInput("buyer@example.com")
	_, err := authSvc.Register(ctx, in)
	require.NoError(t, err)
	login, err := authSvc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)
	buyerID := login.User.ID

	p := products.add(models.Product{Name: "Lamp", Price: 20, Quantity: 10})

	view, err := cartSvc.AddItem(ctx, buyerID, p.ID.Hex(), 2)
	require.NoError(t, err)

	lines := make([]OrderLine, len(view.Items))
	for i, item := range view.Items {
		lines[i] = OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	order, err := orderSvc.PlaceOrder(ctx, buyerID, PlaceOrderInput{
		Lines:         lines,
		DeclaredTotal: view.TotalPrice,
		PaymentMethod: "cod",
	})
	require.NoError(t, err)

	assert.Equal(t, 40.0, order.TotalAmount)
	assert.Equal(t, models.PaymentPending, order.Payment.Status)
	assert.Equal(t, models.OrderNotProcessed, order.OrderStatus)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.Nil(t, order.Reconciliation)
	assert.Equal(t, 8, products.get(p.ID).Quantity)

	after, err := cartSvc.GetCart(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
}

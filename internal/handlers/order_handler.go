package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/service"
)

type OrderHandler struct {
	responder
	orders OrderEngine
}

func NewOrderHandler(orders OrderEngine, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{responder: responder{logger: logger}, orders: orders}
}

// productRef accepts either a bare product id or a product object with an
// "_id" field, as clients send whole cart lines back.
type productRef string

func (p *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*p = productRef(obj.ID)
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*p = productRef(id)
	return nil
}

type orderLineRequest struct {
	Product  productRef `json:"product" binding:"required"`
	Quantity int        `json:"quantity" binding:"required,min=1"`
}

type placeOrderRequest struct {
	CartItems     []orderLineRequest `json:"cartItems" binding:"required,min=1,dive"`
	TotalAmount   float64            `json:"totalAmount"`
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// POST /api/v1/orders/place-order
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	lines := make([]service.OrderLine, len(req.CartItems))
	for i, item := range req.CartItems {
		lines[i] = service.OrderLine{ProductID: string(item.Product), Quantity: item.Quantity}
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.UserID(c), service.PlaceOrderInput{
		Lines:         lines,
		DeclaredTotal: req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

// GET /api/v1/orders/user-orders and /api/v1/auth/orders
func (h *OrderHandler) UserOrders(c *gin.Context) {
	orders, err := h.orders.ListByBuyer(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Your orders", gin.H{"orders": orders})
}

// GET /api/v1/orders/all-orders
func (h *OrderHandler) AllOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "All orders", gin.H{"orders": orders})
}

// GET /api/v1/orders/admin-orders
func (h *OrderHandler) AdminOrders(c *gin.Context) {
	orders, err := h.orders.ListForOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Orders for your products", gin.H{"orders": orders})
}

// GET /api/v1/orders/order-statuses
func (h *OrderHandler) Statuses(c *gin.Context) {
	h.ok(c, http.StatusOK, "Order statuses", gin.H{"statuses": h.orders.Statuses()})
}

// PUT /api/v1/orders/order-status/:orderId
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

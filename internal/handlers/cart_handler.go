package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/middleware"
)

type CartHandler struct {
	responder
	carts CartEngine
}

func NewCartHandler(carts CartEngine, logger zerolog.Logger) *CartHandler {
	return &CartHandler{responder: responder{logger: logger}, carts: carts}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"omitempty,min=1"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// POST /api/v1/cart/add-item
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	cart, err := h.carts.AddItem(c.Request.Context(), middleware.UserID(c), req.ProductID, qty)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Item added to cart", gin.H{"cart": cart})
}

// GET /api/v1/cart/get
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Cart fetched", gin.H{"cart": cart})
}

// DELETE /api/v1/cart/remove-item/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(c.Request.Context(), middleware.UserID(c), c.Param("productId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Item removed from cart", gin.H{"cart": cart})
}

// PUT /api/v1/cart/update-quantity/:productId
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	cart, err := h.carts.SetItemQuantity(c.Request.Context(), middleware.UserID(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Cart updated", gin.H{"cart": cart})
}

// DELETE /api/v1/cart/clear-all
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Cart cleared", nil)
}

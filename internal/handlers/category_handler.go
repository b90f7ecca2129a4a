package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/middleware"
)

type CategoryHandler struct {
	responder
	catalog CatalogEngine
}

func NewCategoryHandler(catalog CatalogEngine, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{responder: responder{logger: logger}, catalog: catalog}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/v1/category/create-category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "New category created", gin.H{"category": category})
}

// PUT /api/v1/category/update-category/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), req.Name, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Category updated successfully", gin.H{"category": category})
}

// DELETE /api/v1/category/delete-category/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Category deleted successfully", nil)
}

// GET /api/v1/category/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "All categories list", gin.H{"category": categories})
}

// GET /api/v1/category/admin-categories
func (h *CategoryHandler) ListOwnCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategoriesByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Your categories", gin.H{"category": categories})
}

// GET /api/v1/category/single-category/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Get single category successfully", gin.H{"category": category})
}

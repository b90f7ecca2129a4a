package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/service"
)

const maxPageSize = 100

type ProductHandler struct {
	responder
	catalog CatalogEngine
}

func NewProductHandler(catalog CatalogEngine, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{responder: responder{logger: logger}, catalog: catalog}
}

type productFilterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
	Keyword string    `json:"keyword"`
}

type adminFilterRequest struct {
	Keyword string `json:"keyword"`
}

// POST /api/v1/product/create-product (multipart)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	fields, err := productFields(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	photo, closePhoto, err := productPhoto(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closePhoto()

	product, err := h.catalog.CreateProduct(c.Request.Context(), fields, photo, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "Product created successfully", gin.H{"products": product})
}

// PUT /api/v1/product/update-product/:pid (multipart)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	fields, err := productFields(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	photo, closePhoto, err := productPhoto(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closePhoto()

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("pid"), fields, photo, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Product updated successfully", gin.H{"products": product})
}

// DELETE /api/v1/product/delete/:pid
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("pid"), middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Product deleted successfully", nil)
}

// GET /api/v1/product/get-product
func (h *ProductHandler) ListOwnProducts(c *gin.Context) {
	products, err := h.catalog.ListProductsByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Your products", gin.H{"countTotal": len(products), "products": products})
}

// GET /api/v1/product/get-all-products?page=&page_size=
func (h *ProductHandler) ListAllProducts(c *gin.Context) {
	page, pageSize := getPaginationParams(c)

	result, err := h.catalog.ListAllProducts(c.Request.Context(), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "All products", gin.H{
		"products":   result.Products,
		"totalCount": result.Total,
		"page":       result.Page,
		"pageSize":   result.PageSize,
	})
}

// GET /api/v1/product/get-product/:slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Single product fetched", gin.H{"product": product})
}

// POST /api/v1/product/product-filters
func (h *ProductHandler) FilterProducts(c *gin.Context) {
	var req productFilterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	products, err := h.catalog.FilterProducts(c.Request.Context(), service.FilterInput{
		Keyword:    req.Keyword,
		Categories: req.Checked,
		Price:      req.Radio,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Filtered products", gin.H{"products": products})
}

// POST /api/v1/product/admin-filter-products
func (h *ProductHandler) AdminFilterProducts(c *gin.Context) {
	var req adminFilterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	products, err := h.catalog.AdminFilterProducts(c.Request.Context(), middleware.UserID(c), req.Keyword)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Filtered products", gin.H{"products": products})
}

// GET /api/v1/product/search/:keyword
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	results, err := h.catalog.SearchProducts(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Search results", gin.H{"results": results})
}

// GET /api/v1/product/related-product/:pid/:cid
func (h *ProductHandler) RelatedProducts(c *gin.Context) {
	products, err := h.catalog.RelatedProducts(c.Request.Context(), c.Param("pid"), c.Param("cid"), service.DefaultRelatedLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Related products", gin.H{"products": products})
}

// GET /api/v1/product/product-photo/:pid
func (h *ProductHandler) ProductPhoto(c *gin.Context) {
	rc, contentType, err := h.catalog.ProductPhoto(c.Request.Context(), c.Param("pid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// bindOptionalJSON binds a JSON body that may be absent altogether.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// getPaginationParams reads page and page_size. A missing page_size means
// no paging.
func getPaginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))

	if page < 1 {
		page = 1
	}
	if pageSize < 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// productFields reads the multipart text fields. Missing fields are left
// nil or empty for the catalog to report; only malformed numbers fail here.
func productFields(c *gin.Context) (models.ProductFields, error) {
	f := models.ProductFields{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}

	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, apperror.Validation("price", "Price must be a number")
		}
		f.Price = &price
	}
	if raw := strings.TrimSpace(c.PostForm("quantity")); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return f, apperror.Validation("quantity", "Quantity must be a whole number")
		}
		f.Quantity = &qty
	}
	if raw := strings.TrimSpace(c.PostForm("shipping")); raw != "" {
		shipping, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperror.Validation("shipping", "Shipping must be true or false")
		}
		f.Shipping = &shipping
	}
	return f, nil
}

// productPhoto opens the optional "photo" part. The returned func closes it.
func productPhoto(c *gin.Context) (*service.Photo, func(), error) {
	header, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperror.Validation("photo", "Photo could not be read")
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperror.Internal("could not open uploaded photo", err)
	}
	return &service.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}

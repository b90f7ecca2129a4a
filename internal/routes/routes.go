package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/handlers"
	"ecommerce-backend/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Category *handlers.CategoryHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
}

// Options carries what the route table needs besides the handlers.
type Options struct {
	Tokens      auth.TokenMaker
	Users       middleware.UserResolver
	Logger      zerolog.Logger
	CORSOrigins []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(opts.Logger),
		middleware.RecoverMiddleware(opts.Logger),
		cors.New(corsConfig(opts.CORSOrigins)),
	)
	RegisterRoutes(router, h, opts)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(router *gin.Engine, h Handlers, opts Options) {
	authn := middleware.Authenticate(opts.Tokens)
	admin := middleware.RequireAdmin(opts.Users, opts.Logger)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Welcome to the ecommerce API"})
	})

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.PUT("/profile", authn, h.Auth.UpdateProfile)
		authGroup.GET("/orders", authn, h.Order.UserOrders)
		authGroup.GET("/user-auth", authn, h.Auth.UserAuth)
		authGroup.GET("/admin-auth", authn, admin, h.Auth.UserAuth)
	}

	category := v1.Group("/category")
	{
		category.POST("/create-category", authn, admin, h.Category.CreateCategory)
		category.GET("/categories", h.Category.ListCategories)
		category.GET("/admin-categories", authn, admin, h.Category.ListOwnCategories)
		category.PUT("/update-category/:id", authn, admin, h.Category.UpdateCategory)
		category.DELETE("/delete-category/:id", authn, admin, h.Category.DeleteCategory)
		category.GET("/single-category/:slug", h.Category.GetCategory)
	}

	product := v1.Group("/product")
	{
		product.POST("/create-product", authn, admin, h.Product.CreateProduct)
		product.PUT("/update-product/:pid", authn, admin, h.Product.UpdateProduct)
		product.GET("/get-product", authn, admin, h.Product.ListOwnProducts)
		product.GET("/get-product/:slug", h.Product.GetProduct)
		product.DELETE("/delete/:pid", authn, admin, h.Product.DeleteProduct)
		product.POST("/product-filters", h.Product.FilterProducts)
		product.POST("/admin-filter-products", authn, admin, h.Product.AdminFilterProducts)
		product.GET("/search/:keyword", h.Product.SearchProducts)
		product.GET("/related-product/:pid/:cid", h.Product.RelatedProducts)
		product.GET("/get-all-products", h.Product.ListAllProducts)
		product.GET("/product-photo/:pid", h.Product.ProductPhoto)
	}

	cart := v1.Group("/cart", authn)
	{
		cart.POST("/add-item", h.Cart.AddItem)
		cart.GET("/get", h.Cart.GetCart)
		cart.DELETE("/remove-item/:productId", h.Cart.RemoveItem)
		cart.PUT("/update-quantity/:productId", h.Cart.UpdateQuantity)
		cart.DELETE("/clear-all", h.Cart.Clear)
	}

	orders := v1.Group("/orders", authn)
	{
		orders.POST("/place-order", h.Order.PlaceOrder)
		orders.GET("/user-orders", h.Order.UserOrders)
		orders.GET("/all-orders", admin, h.Order.AllOrders)
		orders.GET("/admin-orders", admin, h.Order.AdminOrders)
		orders.GET("/order-statuses", admin, h.Order.Statuses)
		orders.PUT("/order-status/:orderId", admin, h.Order.SetStatus)
	}
}

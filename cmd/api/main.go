package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/database"
	"ecommerce-backend/internal/handlers"
	"ecommerce-backend/internal/logger"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/routes"
	"ecommerce-backend/internal/service"
	"ecommerce-backend/internal/storage"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	log.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("could not create indexes")
	}

	photos, err := storage.NewPhotoStore(db, cfg.PhotoBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open photo bucket")
	}

	users := repository.NewUserRepository(db.Collection(database.UsersCollection))
	categories := repository.NewCategoryRepository(db.Collection(database.CategoriesCollection))
	products := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	carts := repository.NewCartRepository(db.Collection(database.CartsCollection))
	orders := repository.NewOrderRepository(db.Collection(database.OrdersCollection))

	tokens := auth.NewJWTMaker(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := service.NewAuthService(users, auth.NewHasher(cfg.BcryptCost), tokens, cfg.AllowAdminSignup, log)
	catalogSvc := service.NewCatalogService(categories, products, photos, log)
	cartSvc := service.NewCartService(carts, products, log)
	orderSvc := service.NewOrderService(orders, products, users, carts, log)

	router := routes.NewRouter(routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, log),
		Category: handlers.NewCategoryHandler(catalogSvc, log),
		Product:  handlers.NewProductHandler(catalogSvc, log),
		Cart:     handlers.NewCartHandler(cartSvc, log),
		Order:    handlers.NewOrderHandler(orderSvc, log),
	}, routes.Options{
		Tokens:      tokens,
		Users:       authSvc,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

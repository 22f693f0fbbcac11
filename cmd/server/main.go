package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/config"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/delivery"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/store"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/pkg/db"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting storefront service...")

	ctx := context.Background()

	var backend storage.Backend
	switch cfg.StorageBackend {
	case "memory":
		backend = storage.NewMemory()
		logger.Info("Using in-memory storage backend.")
	default:
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		logger.Info("Database connection established.")

		pg := storage.NewPostgres(database, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to prepare storage schema: %v", err)
		}
		backend = pg
	}

	// --- Dependency Injection ---
	identity, err := store.NewIdentity(ctx, backend, cfg.AdminEmail, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize identity store: %v", err)
	}
	catalog, err := store.NewCatalog(ctx, backend, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize catalog store: %v", err)
	}
	orders, err := store.NewOrders(ctx, backend, identity, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize order store: %v", err)
	}
	logger.Info("Stores initialized.")

	if err := seedCatalog(ctx, catalog, logger); err != nil {
		logger.Warnf("Catalog seeding failed: %v", err)
	}

	authHandler := delivery.NewAuthHandler(identity, logger)
	productHandler := delivery.NewProductHandler(catalog, logger)
	orderHandler := delivery.NewOrderHandler(orders, catalog, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))
	router.Use(delivery.Authenticate(identity, logger))

	auth := delivery.RequireAuth(logger)
	admin := delivery.RequireAdmin(logger)
	authHandler.RegisterRoutes(router, auth)
	productHandler.RegisterRoutes(router, admin)
	orderHandler.RegisterRoutes(router, auth, admin)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on port %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}

// seedCatalog fills an empty catalog with a small starter set so a
// fresh install has something to browse.
func seedCatalog(ctx context.Context, catalog *store.Catalog, logger *logrus.Logger) error {
	if len(catalog.List()) > 0 {
		return nil
	}

	seed := []domain.ProductDraft{
		{Name: "Orange Juice", Category: "juices", Price: 5.5, Description: "Freshly squeezed orange juice."},
		{Name: "Green Tea", Category: "drinks", Price: 3.25, Description: "Loose leaf green tea."},
		{Name: "Espresso Beans", Category: "coffee", Price: 12.0, Description: "Dark roast espresso beans, 500g."},
	}
	for _, draft := range seed {
		if _, err := catalog.Add(ctx, draft); err != nil {
			return err
		}
	}

	logger.Infof("Seeded catalog with %d products", len(seed))
	return nil
}

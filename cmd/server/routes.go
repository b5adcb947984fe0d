package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"apotek-system/config"
	"apotek-system/internal/database"
	"apotek-system/internal/gateway/handlers"
	"apotek-system/internal/gateway/middleware"
	inventory "apotek-system/internal/services/inventory/handler"
	pos "apotek-system/internal/services/pos/handler"
	user "apotek-system/internal/services/user/handler"
	"apotek-system/internal/utils"
	"apotek-system/web"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	tokenManager := utils.NewTokenManager(cfg.Auth.JWTSecret)

	inventoryHandler := handlers.NewInventoryHTTPHandler(inventory.NewInventoryHandler(db, redisClient))
	posHandler := handlers.NewPOSHTTPHandler(pos.NewPOSHandler(db))
	userHandler := handlers.NewUserHTTPHandler(user.NewUserHandler(db, tokenManager))

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/register", userHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(tokenManager))
	{
		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
		}

		drugs := protected.Group("/drugs")
		{
			drugs.POST("", inventoryHandler.CreateDrug)
			drugs.GET("", inventoryHandler.GetDrugs)
			drugs.GET("/search", inventoryHandler.SearchDrugs)
			drugs.GET("/low-stock", inventoryHandler.GetLowStockDrugs)
		}

		batches := protected.Group("/batches")
		{
			batches.POST("", inventoryHandler.CreateBatch)
			batches.GET("/expiring", inventoryHandler.GetExpiringBatches)
			batches.GET("/by-drug/:drugId", inventoryHandler.GetBatchesByDrug)
			batches.GET("/:id", inventoryHandler.GetBatchByID)
		}

		suppliers := protected.Group("/suppliers")
		{
			suppliers.POST("", inventoryHandler.CreateSupplier)
			suppliers.GET("", inventoryHandler.GetSuppliers)
		}

		purchaseOrders := protected.Group("/purchase-orders")
		{
			purchaseOrders.POST("", inventoryHandler.CreatePurchaseOrder)
		}

		customers := protected.Group("/customers")
		{
			customers.POST("", posHandler.CreateCustomer)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", posHandler.CreateTransaction)
			transactions.POST("/:id/items", posHandler.CreateTransactionItem)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.POST("", posHandler.CreateExpense)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/daily-sales", posHandler.GetDailySalesSummary)
		}
	}

	r.StaticFS("/app", web.Assets())
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/app/")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

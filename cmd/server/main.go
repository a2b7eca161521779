package main

import (
	"context"
	"log"
	"time"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/config"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/database"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/events"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/handlers"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/redis"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/repository"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/services"
	"github.com/Mtumish1/Nairobi-Gift-Shop/pkg/payment"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize payment gateway client
	gateway := payment.NewClient(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, time.Duration(cfg.GatewayTimeout)*time.Second)

	// Initialize order event publisher
	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	publisher := events.NewKafkaPublisher(kafkaWriter)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo, categoryRepo)
	paymentService := services.NewPaymentService(orderRepo, gateway, redisClient, publisher, cfg)
	checkoutService := services.NewCheckoutService(productRepo, orderRepo, paymentService, publisher, cfg)
	orderService := services.NewOrderService(orderRepo, redisClient, publisher)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(checkoutService, orderService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, cfg.WebhookSecret)

	// Drain deferred webhook reconciliations in the background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go paymentService.StartRetryWorker(ctx)

	// Setup routes
	router := gin.Default()
	router.Use(handlers.RequestID())

	api := router.Group("/api")
	{
		api.POST("/users/register", userHandler.Register)
		api.POST("/users/login", userHandler.Login)
		api.GET("/users/me", handlers.AuthRequired(cfg.JWTSecret), userHandler.GetMe)

		api.GET("/products", productHandler.GetAllProducts)
		api.GET("/products/:id", productHandler.GetProductByID)
		api.GET("/categories", productHandler.GetCategories)
		api.GET("/categories/:id/products", productHandler.GetProductsByCategory)
		api.POST("/gifts/recommend", productHandler.RecommendGift)

		orders := api.Group("/orders")
		{
			orders.GET("/track/:trackingNumber", orderHandler.TrackOrder)

			authed := orders.Group("", handlers.AuthRequired(cfg.JWTSecret))
			{
				authed.POST("/checkout", orderHandler.Checkout)
				authed.GET("", orderHandler.GetOrderHistory)
				authed.GET("/:id", orderHandler.GetOrderByID)
				authed.POST("/:id/cancel", orderHandler.CancelOrder)
				authed.PATCH("/:id/status", handlers.StaffOnly(), orderHandler.UpdateOrderStatus)
			}
		}

		api.POST("/webhooks/payment", webhookHandler.HandlePaymentWebhook)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

package main

import (
	"fmt"
	"log"

	"waste-whirl-api/config"
	"waste-whirl-api/handlers"
	"waste-whirl-api/middleware"
	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql db handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{}, &models.UserDetails{}, &models.CustomerDetails{},
		&models.RagpickerDetails{}, &models.Balance{}, &models.CompanyBalance{},
		&models.Review{}, &models.Request{}, &models.RagpickerApplication{},
		&models.Sensor{}, &models.SensorLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, live feed and caching disabled: %v", err)
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tn, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Telegram notifier init failed, notifications disabled: %v", err)
		} else {
			notifier = tn
		}
	}

	authService := services.NewAuthService(cfg.JWT)
	identity := services.NewIdentityService(cfg.Identity)
	ledger := services.NewLedgerService()
	settlement := services.NewSettlementService(ledger, cfg.Policy.PayoutAmount)
	bins := services.NewBinStateService(db, settlement, notifier, cache)
	forecast := services.NewForecastService(db)
	reviews := services.NewReviewService(db)
	requests := services.NewRequestService(db, ledger, notifier, cfg.Policy.TransferAmount, cfg.Policy.EnforceCustomerFloor)

	authHandler := handlers.NewAuthHandler(db, authService)
	userHandler := handlers.NewUserHandler(db)
	customerHandler := handlers.NewCustomerHandler(db, ledger)
	ragpickerHandler := handlers.NewRagpickerHandler(db, ledger, reviews)
	sensorHandler := handlers.NewSensorHandler(db, bins, forecast)
	requestHandler := handlers.NewRequestHandler(requests)
	reviewHandler := handlers.NewReviewHandler(reviews)
	applicationHandler := handlers.NewApplicationHandler(db, identity)

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "UP",
			"message": "Waste Whirl API is running",
		})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/company/register", authHandler.Register)
		auth.POST("/company/login", authHandler.Login)
	}

	users := router.Group("/users")
	{
		users.POST("", userHandler.Upsert)
		users.GET("/:clerk_id", userHandler.Get)
		users.PUT("/:clerk_id/details", userHandler.PutDetails)
		users.GET("/:clerk_id/details", userHandler.GetDetails)
	}

	customers := router.Group("/customers")
	{
		customers.PUT("/:clerk_id/details", customerHandler.PutDetails)
		customers.GET("/:clerk_id/details", customerHandler.GetDetails)
		customers.GET("/:clerk_id/balance", customerHandler.GetBalance)
	}

	ragpickers := router.Group("/ragpickers")
	{
		ragpickers.GET("", ragpickerHandler.List)
		ragpickers.PUT("/:clerk_id/details", ragpickerHandler.PutDetails)
		ragpickers.GET("/:clerk_id/details", ragpickerHandler.GetDetails)
		ragpickers.GET("/:clerk_id/balance", ragpickerHandler.GetBalance)
		ragpickers.GET("/:clerk_id/reviews", ragpickerHandler.GetReviews)
	}

	sensors := router.Group("/sensors")
	{
		sensors.POST("", sensorHandler.Create)
		sensors.GET("", sensorHandler.List)
		sensors.POST("/update-status", sensorHandler.UpdateStatus)
		sensors.POST("/rfid", sensorHandler.AttachRFID)
		sensors.GET("/logs/:sensor_id", sensorHandler.Logs)
		sensors.GET("/:sensor_id", sensorHandler.Get)
		sensors.GET("/:sensor_id/forecast", sensorHandler.Forecast)
	}

	reqs := router.Group("/requests")
	{
		reqs.POST("", requestHandler.Create)
		reqs.GET("/customer/:clerk_id", requestHandler.ListForCustomer)
		reqs.GET("/ragpicker/:clerk_id", requestHandler.ListForRagpicker)
		reqs.GET("/:id", requestHandler.Get)
		reqs.PUT("/:id", requestHandler.UpdateStatus)
	}

	router.POST("/reviews", reviewHandler.Create)

	admin := router.Group("/admin", middleware.RequireAuth(authService))
	{
		admin.POST("/applications", applicationHandler.Create)
		admin.GET("/applications", applicationHandler.List)
		admin.POST("/applications/:id/review", applicationHandler.Review)
	}

	if cache != nil && cache.Available() {
		router.GET("/ws/bins", handlers.BinsWebSocket(cache, authService))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/events"
	"github.com/gaelxxl34/alsabil-service/internal/handler"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
	"github.com/gaelxxl34/alsabil-service/internal/service"
	"github.com/gaelxxl34/alsabil-service/pkg/config"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("table", cfg.TableName),
		zap.Bool("kafka_enabled", cfg.KafkaEnabled))

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		logger.Fatal("Failed to create DynamoDB client", zap.Error(err))
	}

	orderRepo := repository.NewOrderRepository(dynamoClient, cfg.TableName)
	userRepo := repository.NewUserRepository(dynamoClient, cfg.TableName)
	convRepo := repository.NewConversationRepository(dynamoClient, cfg.TableName)

	relay := events.NewRelay(cfg.EventListenerCap, logger)

	// The Kafka bridge is an ordinary relay listener: every in-process emit
	// is mirrored to the shared topic when the bridge is enabled.
	if cfg.KafkaEnabled {
		bridge := events.NewKafkaBridge(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer bridge.Close()
		relay.Subscribe(func(evt events.OrderEvent) {
			_ = bridge.Publish(evt)
		})
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	authService := service.NewAuthService(userRepo, []byte(cfg.SessionSecret), sessionTTL, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, relay, logger)
	userService := service.NewUserService(userRepo, orderService, logger)
	convService := service.NewConversationService(convRepo, userRepo, logger)

	authHandler := handler.NewAuthHandler(authService, cfg.Production(), logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	convHandler := handler.NewConversationHandler(convService, logger)
	eventsHandler := handler.NewEventsHandler(relay, logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"service": "alsabil-service",
			})
		})

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		authed := api.Group("")
		authed.Use(middleware.Auth(authService))
		{
			authed.GET("/auth/me", authHandler.Me)

			authed.POST("/orders", orderHandler.Create)
			authed.GET("/orders", orderHandler.List)
			authed.GET("/orders/:id", orderHandler.Get)
			authed.PUT("/orders/:id", orderHandler.Update)

			authed.GET("/events/orders", eventsHandler.StreamOrders)

			authed.GET("/conversations", convHandler.List)
			authed.POST("/conversations", convHandler.Create)
			authed.GET("/conversations/:id/messages", convHandler.ListMessages)
			authed.POST("/conversations/:id/messages", convHandler.SendMessage)

			authed.GET("/users", userHandler.List)
			authed.GET("/users/:id", userHandler.Get)
			authed.POST("/users", userHandler.Create)
			authed.DELETE("/users/:id", userHandler.Delete)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if !cfg.Production() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}
	return zapCfg.Build()
}

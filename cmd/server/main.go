package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/commentsapp/backend/internal/cache"
	"github.com/commentsapp/backend/internal/captcha"
	"github.com/commentsapp/backend/internal/comments"
	"github.com/commentsapp/backend/internal/config"
	"github.com/commentsapp/backend/internal/database"
	"github.com/commentsapp/backend/internal/handlers"
	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/metrics"
	"github.com/commentsapp/backend/internal/middleware"
	"github.com/commentsapp/backend/internal/queue"
	"github.com/commentsapp/backend/internal/repository"
	"github.com/commentsapp/backend/internal/storage"
	"github.com/commentsapp/backend/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		// Fine in production where everything comes from the environment
		os.Stderr.WriteString("no .env file found, using system environment\n")
	}

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("comments server starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	metrics.Initialize()

	if err := database.Initialize(cfg.DatabaseURL); err != nil {
		logger.FatalWithFields("failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("failed to run migrations", err)
	}

	// Captcha state lives in redis, so a dead redis at boot is fatal.
	// Redis failures at runtime only cost us the page cache.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.FatalWithFields("failed to connect to redis", err)
	}
	defer redisClient.Close()

	pageCache := cache.NewPageCache(redisClient)
	captchaService := captcha.NewService(redisClient)

	var publisher *queue.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = queue.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logger.WarnWithFields("work queue unavailable, comment events will not be published", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	} else {
		logger.Info("RABBITMQ_URL not set, work-queue publication disabled")
	}

	uploader, err := buildUploader(cfg)
	if err != nil {
		logger.FatalWithFields("failed to initialize file storage", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	wsHandler := websocket.NewHandler(hub)

	userRepo := repository.NewUserRepository(database.DB)
	commentRepo := repository.NewCommentRepository(database.DB)

	commentService := comments.NewService(commentRepo, userRepo, pageCache, wsHandler, publisherOrNil(publisher))

	h := handlers.New(commentService, captchaService, uploader)

	router := buildRouter(cfg, h, wsHandler, redisClient)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("http server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.WarnWithFields("websocket shutdown incomplete", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.WarnWithFields("http server shutdown incomplete", err)
	}

	logger.Info("server stopped")
}

// publisherOrNil avoids handing the service a non-nil interface
// wrapping a nil *queue.Publisher.
func publisherOrNil(p *queue.Publisher) comments.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func buildUploader(cfg *config.Config) (storage.Uploader, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Uploader(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
	}
	return storage.NewLocalUploader(cfg.UploadsDir, cfg.PublicBaseURL)
}

func buildRouter(cfg *config.Config, h *handlers.Handlers, ws *websocket.Handler, redisClient *cache.RedisClient) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		api.GET("/comments", h.GetComments)
		api.POST("/comments", h.CreateComment)
		api.POST("/comments/preview", h.PreviewComment)

		api.GET("/captcha", h.GenerateCaptcha)
		api.POST("/captcha/validate", h.ValidateCaptcha)

		api.POST("/file/image", h.UploadImage)
		api.POST("/file/text", h.UploadTextFile)

		api.GET("/ws", ws.HandleWebSocket)
		api.GET("/ws/stats", ws.HandleStats)
	}

	if cfg.StorageBackend != "s3" {
		router.Static("/uploads", cfg.UploadsDir)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := database.Health(); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

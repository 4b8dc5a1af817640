package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weiawesome/ward-rooms/internal/cache"
	"github.com/weiawesome/ward-rooms/internal/config"
	"github.com/weiawesome/ward-rooms/internal/directory"
	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/internal/handler"
	"github.com/weiawesome/ward-rooms/internal/imagestore"
	"github.com/weiawesome/ward-rooms/internal/metrics"
	"github.com/weiawesome/ward-rooms/internal/repository"
	"github.com/weiawesome/ward-rooms/internal/service"
	"github.com/weiawesome/ward-rooms/pkg/database"
	pkgjwt "github.com/weiawesome/ward-rooms/pkg/jwt"
	pkglog "github.com/weiawesome/ward-rooms/pkg/log"
	"github.com/weiawesome/ward-rooms/pkg/middleware"
	"github.com/weiawesome/ward-rooms/pkg/pubsub"
	"github.com/weiawesome/ward-rooms/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	if cfg.Server.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db, &domain.RoomModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	roomRepo := repository.NewGormRoomRepository(db)

	// Initialize Redis cache. The service runs uncached when it is disabled.
	var (
		roomCache  cache.RoomCache = cache.NopRoomCache{}
		redisCache *cache.RedisRoomCache
	)
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(startCtx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		redisCache = cache.NewRedisRoomCache(client, cfg.Cache.Prefix)
		roomCache = redisCache
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis cache connected")
	}
	defer roomCache.Close()

	// Initialize image storage
	store, err := storage.New(startCtx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	images := imagestore.NewStorageImageStore(store, imagestore.Options{
		MaxBytes:    cfg.Image.MaxBytes,
		MaxWidth:    cfg.Image.MaxWidth,
		MaxHeight:   cfg.Image.MaxHeight,
		JPEGQuality: cfg.Image.JPEGQuality,
		KeyPrefix:   cfg.Image.KeyPrefix,
	})
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("image storage initialized")

	// Initialize event publisher
	publisher, err := pubsub.NewPublisher(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize event publisher")
	}
	defer publisher.Close()

	// Initialize services
	roomService := service.NewRoomService(roomRepo, images, roomCache, publisher, service.Options{
		CacheTTL:  cfg.Cache.TTL,
		MaxImages: cfg.Image.MaxCount,
	})
	queryEngine := service.NewQueryEngine(roomRepo)

	// Initialize auth middleware
	var verifier *pkgjwt.Verifier
	if cfg.Auth.Enabled {
		verifier, err = pkgjwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create token verifier")
		}
	} else {
		logger.Warn().Msg("authentication disabled, mutations are open")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(roomService, queryEngine, directory.NewClient(cfg.Directory), authMiddleware, handler.Options{
		MaxBodyBytes: cfg.Image.MaxBytes*int64(cfg.Image.MaxCount) + 1<<20,
		ExposeErrors: cfg.Server.IsDevelopment(),
		RoomOptions:  cfg.Options,
	})

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(metrics.GinMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if redisCache != nil {
			status["cache"] = "ok"
			if err := redisCache.Ping(ctx); err != nil {
				// Reads fall back to the database, so a cache outage only degrades.
				status["status"], status["cache"] = "degraded", "unreachable"
			}
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := store.(*storage.LocalStorage); ok && cfg.Server.StaticPath != "" {
		r.Static(cfg.Server.StaticPath, local.BasePath())
	}

	// Register routes
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("mode", cfg.Server.Mode).Msg("room-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

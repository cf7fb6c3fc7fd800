package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/atims0208/fieldhouse/internal/cache"
	"github.com/atims0208/fieldhouse/internal/client"
	"github.com/atims0208/fieldhouse/internal/config"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/handler"
	"github.com/atims0208/fieldhouse/internal/hub"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/internal/service"
	"github.com/atims0208/fieldhouse/pkg/database"
	"github.com/atims0208/fieldhouse/pkg/jwt"
	pkglog "github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/middleware"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
	"github.com/atims0208/fieldhouse/pkg/storage"
)

// treasuryInitialBalance is the coin pool admin grants draw from.
const treasuryInitialBalance int64 = 1_000_000_000

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

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.StreamModel{},
		&domain.FollowModel{},
		&domain.TransferModel{},
		&domain.GiftModel{},
		&domain.ProductModel{},
		&domain.CartItemModel{},
		&domain.OrderModel{},
		&domain.OrderItemModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	streamRepo := repository.NewGormStreamRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	walletRepo := repository.NewGormWalletRepository(db)

	// Seed the platform treasury for admin coin grants.
	if err := walletRepo.EnsureTreasury(ctx, service.TreasuryUserID, treasuryInitialBalance); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed treasury")
	}

	// Redis for follower count caching
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	followCache := cache.NewFollowCache(redisClient, cfg.Cache.TTL)
	profileCache := cache.NewProfileCache(redisClient, cfg.Cache.TTL)
	logger.Info().Msg("redis connected")

	// Event bus
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create event bus")
	}
	defer bus.Close()

	// Object storage
	var store storage.Storage
	switch cfg.Storage.Driver {
	case "s3":
		store, err = storage.NewS3Storage(ctx, cfg.Storage.S3)
	default:
		store, err = storage.NewLocalStorage(cfg.Storage.Local)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize storage")
	}

	// Token manager
	tokens, err := jwt.NewManager(cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	// Realtime fan-out hub and bus bridge
	h := hub.NewHub(cfg.WebSocket)
	go h.Run()

	bridge := hub.NewBridge(h, bus)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("event bus bridge stopped")
		}
	}()

	// CDN provisioning client
	cdn := client.NewCDNClient(cfg.CDN)

	// Services
	userService := service.NewUserService(userRepo, tokens, store, profileCache)
	streamService := service.NewStreamService(streamRepo, userRepo, cdn, h, bridge, store)
	followService := service.NewFollowService(followRepo, userRepo, followCache)
	walletService := service.NewWalletService(walletRepo, userRepo, streamRepo, h, bridge)
	shopService := service.NewShopService(productRepo, walletRepo, store)
	adminService := service.NewAdminService(userRepo, streamRepo, productRepo, tokens)
	gatewayService := service.NewGatewayService(h, tokens, streamRepo, bridge)

	// Auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Log.ServiceName})
	})

	handler.NewUserHandler(userService, authMiddleware).RegisterRoutes(r)
	handler.NewStreamHandler(streamService, authMiddleware).RegisterRoutes(r)
	handler.NewFollowHandler(followService, authMiddleware).RegisterRoutes(r)
	handler.NewWalletHandler(walletService, authMiddleware).RegisterRoutes(r)
	handler.NewShopHandler(shopService, authMiddleware).RegisterRoutes(r)
	handler.NewAdminHandler(adminService, walletService, authMiddleware).RegisterRoutes(r)
	handler.NewWSHandler(h, gatewayService, cfg.WebSocket).RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("fieldhouse listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down fieldhouse")
	cancel() // stop the bus bridge first so no events arrive mid-drain

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	logger.Info().Msg("fieldhouse stopped")
}

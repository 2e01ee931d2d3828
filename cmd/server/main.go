package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ether-wallet.backend/internal/config"
	"ether-wallet.backend/internal/infrastructure/blockchain"
	"ether-wallet.backend/internal/infrastructure/jobs"
	"ether-wallet.backend/internal/infrastructure/models"
	"ether-wallet.backend/internal/infrastructure/repositories"
	"ether-wallet.backend/internal/interfaces/http/handlers"
	"ether-wallet.backend/internal/interfaces/http/middleware"
	"ether-wallet.backend/internal/usecases"
	"ether-wallet.backend/pkg/jwt"
	"ether-wallet.backend/pkg/logger"
	"ether-wallet.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	migrateDB = func(db *gorm.DB) error {
		return db.AutoMigrate(&models.User{}, &models.Wallet{}, &models.PasswordReset{})
	}
	newSessionStore = redis.NewSessionStore
	dialChain       = blockchain.NewEVMClient
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	walletRepo := repositories.NewWalletRepository(db)

	// Initialize Session Store
	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Connect to the chain node
	chainClient, err := dialChain(cfg.Blockchain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain node: %w", err)
	}
	defer chainClient.Close()
	log.Printf("⛓️ Connected to chain node at %s", cfg.Blockchain.RPCURL)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, resetRepo, jwtService, sessionStore, cfg.Security.SessionTTL)
	walletStores := usecases.NewWalletStores(
		chainClient,
		walletRepo,
		cfg.Blockchain.ConfirmPollInterval,
		cfg.Blockchain.ConfirmMaxAttempts,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	walletHandler := handlers.NewWalletHandler(walletStores)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresherJob := jobs.NewBalanceRefresherJob(walletRepo, chainClient, cfg.Jobs.BalanceRefreshInterval)
	go refresherJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		walletHandler:  walletHandler,
		authMiddleware: middleware.AuthMiddleware(authUsecase),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		refresherJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Ether Wallet Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Package server
//
// @title PakProperty API
// @version 1.0
// @description Property rental marketplace API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pakproperty/pakproperty/internal/auth"
	"github.com/pakproperty/pakproperty/internal/config"
	"github.com/pakproperty/pakproperty/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	asynqClient *asynq.Client
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Load or create the settings singleton; the JWT secret is generated
	// once on first boot and persisted
	if err := ensureSettings(db, zlog); err != nil {
		return nil, err
	}

	// Initialize validator
	validate := validator.New()

	// Register custom validators, both on our instance and on the engine
	// gin consults for binding tags
	roleValidator := func(fl validator.FieldLevel) bool {
		return models.ValidRole(fl.Field().String())
	}
	validate.RegisterValidation("role", roleValidator)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("role", roleValidator)
	}

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Create server
	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		validator:   validate,
		asynqClient: asynqClient,
		version:     version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// ensureSettings loads the singleton settings row, creating it with a fresh
// JWT secret when the database is new
func ensureSettings(db *gorm.DB, zlog zerolog.Logger) error {
	var settings models.Settings
	err := db.First(&settings).Error
	if err == nil {
		auth.InitializeJWT(settings.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Generate JWT secret (64 hex characters = 32 bytes of randomness)
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	settings = models.Settings{
		JWTSecret:     hex.EncodeToString(secretBytes),
		SweepSchedule: "0 3 * * *", // Expire featured listings and stale reset tokens nightly
		ResetTokenTTL: 60,
	}
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}

	auth.InitializeJWT(settings.JWTSecret)
	zlog.Info().Msg("Generated JWT secret on first boot")
	return nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns      = 8         // Reduced for SQLite efficiency
		maxIdleConns      = 4         // Reduced proportionally
		connMaxLifetime   = 300       // 5 minutes
		busyTimeout       = 5000      // 5 seconds
		cacheSize         = 10000     // 10MB
		mmapSize          = 134217728 // 128MB
		walAutocheckpoint = 1000      // WAL auto-checkpoint pages
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply SQLite pragmas directly (connection string pragmas may not work with all drivers)
	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA wal_autocheckpoint=%d", walAutocheckpoint),
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
		fmt.Sprintf("PRAGMA mmap_size=%d", mmapSize),
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/register", s.register)
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/forgot-password", s.forgotPassword)
	s.router.POST("/api/auth/reset-password/:token", s.resetPassword)
	s.router.GET("/api/auth/verify-email/:token", s.verifyEmail)

	// Public browsing endpoints
	s.router.GET("/api/properties", s.listProperties)
	s.router.GET("/api/properties/:id", s.getProperty)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		// Auth endpoints
		api.GET("/auth/me", s.getCurrentUser)
		api.PUT("/auth/profile", s.updateProfile)
		api.PUT("/auth/change-password", s.changePassword)
		api.POST("/auth/resend-verification", s.resendVerification)

		// Listing management (listing roles only, verified email required)
		listings := api.Group("/properties")
		listings.Use(RoleRequiredMiddleware(s.logger, models.RoleOwner, models.RoleAgent, models.RoleAdmin))
		listings.Use(VerifiedRequiredMiddleware(s.logger))
		{
			listings.POST("", s.createProperty)
			listings.PUT("/:id", s.updateProperty)
			listings.DELETE("/:id", s.deleteProperty)
		}
		api.GET("/my-properties", s.listOwnProperties)

		// Saved properties
		api.GET("/saved-properties", s.listSavedProperties)
		api.POST("/saved-properties/:propertyID", s.saveProperty)
		api.DELETE("/saved-properties/:propertyID", s.unsaveProperty)

		// Inquiries
		api.POST("/properties/:id/inquiries", s.createInquiry)
		api.GET("/inquiries", s.listInquiries)
		api.PUT("/inquiries/:id/read", s.markInquiryRead)
		api.PUT("/inquiries/:id/reply", s.replyInquiry)
		api.PUT("/inquiries/:id/close", s.closeInquiry)

		// Admin panel (admin only)
		admin := api.Group("/admin")
		admin.Use(RoleRequiredMiddleware(s.logger, models.RoleAdmin))
		{
			admin.GET("/users", s.listUsers)
			admin.PUT("/users/:id", s.updateUser)
			admin.DELETE("/users/:id", s.deleteUser)
			admin.GET("/properties", s.adminListProperties)
			admin.PUT("/properties/:id/feature", s.featureProperty)
			admin.PUT("/properties/:id/status", s.setPropertyStatus)
			admin.GET("/stats", s.getStats)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "pakproperty-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine, exposed for handler tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", s.config.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}

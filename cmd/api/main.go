package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "donation-api/api/swagger" // swagger docs
	"donation-api/internal/config"
	"donation-api/internal/database"
	"donation-api/internal/handler"
	"donation-api/internal/logger"
	"donation-api/internal/metrics"
	"donation-api/internal/middleware"
	"donation-api/internal/repository"
	"donation-api/internal/service"
	"donation-api/internal/token"
	"donation-api/internal/upload"
	"donation-api/internal/validation"
	"donation-api/internal/websocket"
	"donation-api/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

// @title           Cat Donation API
// @version         1.0
// @description     Donation platform backend: campaigns, donations, community membership and admin review.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.NewZapLogger(cfg.Log.Path, cfg.IsProduction())
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.Register(); err != nil {
		log.Error("main", "Validator setup failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	db, err := database.NewConnection(cfg.Database.DSN(), log)
	if err != nil {
		log.Error("main", "Database connection failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	log.Info("main", "Connected to PostgreSQL successfully", nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Error("main", "Upload storage setup failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log, cfg.App.CORSOrigins)
	go wsHub.Run()
	defer wsHub.Close()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	txManager := repository.NewTransactionManager(db)

	codec := token.NewCodec(token.Config{
		Secret:          []byte(cfg.JWT.Secret),
		Issuer:          cfg.JWT.Issuer,
		UserAudience:    cfg.JWT.UserAudience,
		AdminAudience:   cfg.JWT.AdminAudience,
		RefreshAudience: cfg.JWT.RefreshAudience,
		AccessTTL:       cfg.JWT.AccessTTL,
		RefreshTTL:      cfg.JWT.RefreshTTL,
	})
	hasher := service.NewPasswordHasher(cfg.Security.BcryptCost)
	principals := middleware.NewPrincipalStore(userRepo, adminRepo)
	gate := middleware.NewGate(codec, principals, log)

	authService := service.NewAuthService(userRepo, adminRepo, auditRepo, txManager, codec, hasher, log)
	userService := service.NewUserService(userRepo, statsRepo, hasher)
	campaignService := service.NewCampaignService(campaignRepo, donationRepo, auditRepo, txManager, storage, wsHub, log)
	donationService := service.NewDonationService(donationRepo, campaignRepo, auditRepo, txManager, wsHub, log)
	communityService := service.NewCommunityService(communityRepo, userRepo, auditRepo, txManager, storage, wsHub, log)
	adminService := service.NewAdminService(adminRepo, userRepo, statsRepo, auditRepo, txManager, hasher, log)
	auditService := service.NewAuditService(auditRepo)
	statsService := service.NewStatsService(statsRepo)

	if err := authService.EnsureSuperAdmin(ctx, cfg.Seed); err != nil {
		log.Error("main", "Super admin seed failed", map[string]interface{}{"error": err})
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, gate, cfg.IsDevelopment())
	userHandler := handler.NewUserHandler(userService, gate)
	campaignHandler := handler.NewCampaignHandler(campaignService, gate)
	donationHandler := handler.NewDonationHandler(donationService, gate)
	communityHandler := handler.NewCommunityHandler(communityService, gate)
	adminHandler := handler.NewAdminHandler(adminService, campaignService, communityService, gate)
	auditHandler := handler.NewAuditHandler(auditService, gate)
	statisticsHandler := handler.NewStatisticsHandler(statsService)

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	// Set up Gin Router
	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.ErrorHandler(log, cfg.IsDevelopment()),
	)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.App.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	if cfg.Upload.Driver != "s3" {
		router.Static("/uploads", cfg.Upload.Dir)
	}

	// WebSocket endpoint, admins only
	router.GET("/ws", websocket.ServeWs(wsHub, codec, principals))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success("Cat Donation API is running", gin.H{
			"environment": cfg.App.Env,
			"timestamp":   time.Now().UTC(),
		}))
	})

	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	campaignHandler.RegisterRoutes(api)
	donationHandler.RegisterRoutes(api)
	communityHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Error("Route not found", ""))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("main", "Server listening", map[string]interface{}{"port": cfg.App.Port, "env": cfg.App.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("main", "Server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("main", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("main", "Graceful shutdown failed", map[string]interface{}{"error": err})
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (upload.Storage, error) {
	validator := upload.NewValidator(cfg.Upload.MaxSize)
	if cfg.Upload.Driver == "s3" {
		return upload.NewS3Storage(ctx, cfg.Upload.S3Bucket, cfg.Upload.S3Region, validator)
	}
	return upload.NewLocalStorage(cfg.Upload.Dir, validator)
}

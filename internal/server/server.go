package server

import (
	"fmt"
	"net/http"
	"time"

	"academy-platform/internal/cache"
	"academy-platform/internal/config"
	"academy-platform/internal/database"
	"academy-platform/internal/events"
	custommiddleware "academy-platform/internal/middleware"
	"academy-platform/internal/repository"
	"academy-platform/internal/service"
	"academy-platform/internal/theme"
	"academy-platform/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers into the HTTP router.
// redisClient may be nil, in which case dealer caching and rate limiting are
// disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, publisher events.OrderPublisher) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack(logger)...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LocaleMiddleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize repositories
	sqlDB := db.DB()
	dealerRepo := repository.NewDealerRepository(sqlDB)
	presetRepo := repository.NewThemePresetRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	groupRepo := repository.NewGroupRepository(sqlDB)
	attendanceRepo := repository.NewAttendanceRepository(sqlDB)

	var dealerCache cache.DealerCache = cache.NoopDealerCache{}
	rateLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		dealerCache = cache.NewDealerCache(redisClient, cfg.Tenant.CacheTTL)
		rateLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rate_limit:orders",
		}, logger)
	} else {
		logger.Warn("Redis unavailable, dealer cache and order rate limiting disabled")
	}

	// Initialize services
	resolver := service.NewTenantResolver(dealerRepo, dealerCache, cfg.Tenant.BaseDomain, cfg.Tenant.FallbackSlug, logger)
	themeService := service.NewThemeService(dealerRepo, presetRepo, theme.NewResolver(logger), logger)
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	orderService := service.NewOrderService(dealerRepo, productRepo, orderRepo, publisher, logger)
	academyService := service.NewAcademyService(groupRepo, attendanceRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	tenantMiddleware := custommiddleware.TenantFromHost(resolver, logger)

	// Register routes
	transport.NewDealerHandler(resolver, logger).RegisterRoutes(router)
	transport.NewStorefrontHandler(themeService, catalogService, logger).RegisterRoutes(router, tenantMiddleware)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, rateLimit)
	transport.NewThemeHandler(themeService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCategoryHandler(catalogService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewAcademyHandler(academyService, logger).RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

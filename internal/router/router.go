package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/config"
	"github.com/Waesta/Wapos-sub001/internal/handler"
	"github.com/Waesta/Wapos-sub001/internal/infra"
	"github.com/Waesta/Wapos-sub001/internal/middleware"
	"github.com/Waesta/Wapos-sub001/internal/repository"
	"github.com/Waesta/Wapos-sub001/internal/service"
	"github.com/Waesta/Wapos-sub001/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, feedCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(db)
	closureRepo := repository.NewClosureRepository(db)

	// Sales data source: direct table reads by default, HTTP feed behind the
	// circuit breaker when SALES_FEED_URL is configured.
	var source repository.SalesSource = repository.NewDBSalesSource(db)
	if cfg.SalesFeedURL != "" {
		source = infra.NewSalesFeed(cfg.SalesFeedURL, feedCB)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	aggregator := service.NewAggregator(source)
	resolver := service.NewRangeResolver(closureRepo)
	variance := service.NewVarianceCalculator(aggregator)
	sessionSvc := service.NewSessionService(sessionRepo, variance)

	dispatcher := worker.NewDispatcher(rdb)
	reportSvc := service.NewReportService(sessionRepo, closureRepo, resolver, aggregator, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	registerH := handler.NewRegisterHandler(sessionSvc)
	reportsH := handler.NewReportHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, feedCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		register := v1.Group("/register")
		{
			register.POST("/open", middleware.RequireRole("cashier", "supervisor", "admin"), registerH.Open)
			register.POST("/close", middleware.RequireRole("cashier", "supervisor", "admin"), registerH.Close)
			register.GET("/active", middleware.RequireRole("cashier", "supervisor", "admin"), registerH.Active)
			register.GET("/sessions", middleware.RequireRole("supervisor", "admin"), registerH.ListSessions)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("/generate", middleware.RequireRole("cashier", "supervisor", "admin"), reportsH.Generate)
			reports.GET("/closures", middleware.RequireRole("supervisor", "admin"), reportsH.ListClosures)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

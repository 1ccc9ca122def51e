package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/cache"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/config"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/handler"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/middleware"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/service"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	caixaRepo := repository.NewCaixaRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Cache / events ───────────────────────────────────────────────────────
	statusCache := cache.NewStatusCache(rdb, cfg.StatusCacheTTL())
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	caixaSvc := service.NewCaixaService(caixaRepo, orderRepo, statusCache, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	caixaH := handler.NewCaixaHandler(caixaSvc)
	orderH := handler.NewOrderHandler(orderSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes — token arrives via HTTP-only cookie (or bearer header)
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	authed := r.Group("", jwtMW)
	{
		caixa := authed.Group("/caixa")
		{
			caixa.POST("/open", caixaH.Open)
			caixa.GET("/status", caixaH.Status)
			caixa.GET("/historico", caixaH.History)
			caixa.POST("/:id/close", caixaH.Close)
			caixa.POST("/:id/movimentacao", caixaH.RecordMovement)
			caixa.GET("/:id/report", caixaH.Report)
			caixa.POST("/:id/pedido/:orderId/movimentacao", caixaH.SettleOrder)
		}

		authed.GET("/pedidos", orderH.List)
		authed.GET("/pedidos/pendentes", orderH.ListPending)
		authed.POST("/pagamentos/:orderId", orderH.CapturePayment)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/common/logger"
	commonmw "github.com/xtopay/checkout-backend/common/middleware"
	"github.com/xtopay/checkout-backend/controllers"
	"github.com/xtopay/checkout-backend/middleware"
)

// ServiceName is reported by /health and used as the metrics dimension.
const ServiceName = "checkout-service"

// APIPrefix mirrors every route for frontends configured with an /api base.
const APIPrefix = "/api"

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Business *controllers.BusinessController
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
}

// EngineConfig carries the global middleware settings.
type EngineConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	Metrics        commonmw.MetricsRecorder
	// RateLimit disables the per-IP limiter when false.
	RateLimit bool
}

// NewEngine builds a gin engine with the global middleware chain and the
// uniform 404/405 envelopes installed. ctx bounds background goroutines.
func NewEngine(ctx context.Context, cfg EngineConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(apperrors.NoMethod())
	r.NoRoute(apperrors.NoRoute())

	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(cfg.Logger))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware(cfg.AllowedOrigins))
	if cfg.RateLimit {
		r.Use(commonmw.RateLimitMiddleware(ctx))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(commonmw.Timeout(cfg.RequestTimeout))
	}
	if cfg.Metrics != nil {
		r.Use(commonmw.MetricsMiddleware(cfg.Metrics, ServiceName))
	}
	return r
}

// RegisterRoutes sets up the checkout API at the root and under /api.
func RegisterRoutes(r *gin.Engine, c Controllers) {
	r.GET("/health", Health)

	register(r.Group(""), c)
	register(r.Group(APIPrefix), c)
}

func register(g *gin.RouterGroup, c Controllers) {
	g.POST("/business/info", middleware.BasicAuth(), c.Business.GetBusinessInfo)

	checkoutRoutes := g.Group("/checkout")
	checkoutRoutes.POST("/initiate", c.Checkout.Initiate)
	checkoutRoutes.GET("/status/:clientReference", c.Checkout.GetStatus)
	checkoutRoutes.POST("/cancel/:clientReference", c.Checkout.Cancel)

	g.POST("/webhook", c.Webhook.Receive)
}

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "service": ServiceName})
}

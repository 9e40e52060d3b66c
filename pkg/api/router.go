package api

import (
	"github.com/gin-gonic/gin"

	"shore-hockey/pkg/middleware"
	"shore-hockey/pkg/ratelimit"
)

// RouterConfig holds what the router needs besides the handlers.
type RouterConfig struct {
	AllowedOrigins []string
	Stats          ratelimit.StatsStore
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(h.metrics),
		gin.CustomRecovery(h.Recovery),
		middleware.CORS(cfg.AllowedOrigins...),
	)

	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", h.Metrics)

	leads := router.Group("/api/leads")
	if h.limiter != nil {
		leads.Use(middleware.RateLimit(h.limiter, cfg.Stats, h.metrics))
	}
	leads.POST("/camp", h.HandleCampLead)
	leads.POST("/business", h.HandleBusinessLead)

	router.NoRoute(h.NoRoute)
	return router
}

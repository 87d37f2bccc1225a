// internal/server/router.go
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopassist/internal/common/logger"
	"shopassist/internal/common/metrics"
	"shopassist/internal/common/observability"
)

// NewRouter builds the gin engine with recovery, request metrics, and all
// application routes.
func NewRouter(h *Handler, obs *observability.Observability, log logger.Logger, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMetrics(obs, log))

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.GET("/conversations/:user_id/:conversation_id", h.Conversation)
	}

	return router
}

func requestMetrics(obs *observability.Observability, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		elapsed := time.Since(start)

		metrics.ChatRequestsTotal.WithLabelValues(path).Inc()
		metrics.ChatRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
		if obs != nil {
			obs.RecordRequest(c.Request.Context(), path)
			obs.RecordRequestDuration(c.Request.Context(), elapsed, path)
		}

		log.Debug("request completed", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": elapsed.String(),
		})
	}
}

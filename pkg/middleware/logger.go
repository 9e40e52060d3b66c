package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/metrics"
	"shore-hockey/pkg/ratelimit"
	"shore-hockey/pkg/utils"
)

// AccessLog writes one event per request. Client addresses are hashed and
// bodies are never logged.
func AccessLog(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		atomic.AddInt64(&m.HTTPRequestsTotal, 1)

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client", utils.Fingerprint(ratelimit.ClientID(c.Request))).
			Msg("request")
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/apperrors"
	"shore-hockey/pkg/metrics"
	"shore-hockey/pkg/models"
	"shore-hockey/pkg/ratelimit"
	"shore-hockey/pkg/utils"
)

// statsTimeout caps how long a stats write may hold up the request.
const statsTimeout = 200 * time.Millisecond

// RateLimit rejects clients that exceed the sliding window with the
// RATE_LIMITED envelope before the body is read.
func RateLimit(limiter *ratelimit.SlidingWindow, stats ratelimit.StatsStore, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.ClientID(c.Request)
		allowed := limiter.Allow(key)

		if stats != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
			err := stats.Record(ctx, ratelimit.Event{
				Key:     key,
				Allowed: allowed,
				Route:   c.Request.Method + " " + c.FullPath(),
				At:      time.Now(),
			})
			cancel()
			if err != nil {
				log.Warn().Err(err).Msg("rate limit stats")
			}
		}

		if allowed {
			c.Next()
			return
		}

		m.IncFailure(string(apperrors.CodeRateLimited))
		log.Warn().
			Str("request_id", GetRequestID(c)).
			Str("client", utils.Fingerprint(key)).
			Msg("rate limited")

		if wait := limiter.RetryAfter(key); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
		}
		appErr := apperrors.RateLimited()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			OK:      false,
			Code:    string(appErr.Code),
			Message: appErr.Message,
		})
	}
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/log"
	"github.com/yeisme/oxygen/pkg/metrics"
)

// errServerFailure 标记 5xx 响应，仅用于熔断计数.
var errServerFailure = errors.New("server failure")

var errCircuitOpen = types.ErrorResponse{
	Error:   "unavailable",
	Message: "service temporarily unavailable",
}

// CircuitBreakerMiddleware 基于 gobreaker 的熔断，5xx 计为失败，打开时直接返回 503.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "http",
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Logger().Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	})

	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, cfg.Exempt) {
			c.Next()

			return
		}

		_, err := cb.Execute(func() (any, error) {
			c.Next()

			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}

			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RejectedRequests.WithLabelValues("circuit_open").Inc()
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, errCircuitOpen)
		}
	}
}

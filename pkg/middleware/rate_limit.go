package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/metrics"
)

var errRateLimited = types.ErrorResponse{
	Error:   "rate_limited",
	Message: "rate limit exceeded, request too frequent, please try again later",
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按键分配令牌桶，访问时顺带回收闲置的桶.
type limiterSet struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	entries   map[string]*keyedLimiter
	now       func() time.Time
}

func newLimiterSet(cfg configs.RateLimitConfig) *limiterSet {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &limiterSet{
		rps:     rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		idleTTL: ttl,
		entries: make(map[string]*keyedLimiter),
		now:     time.Now,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if now.Sub(s.lastSweep) >= s.idleTTL {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) >= s.idleTTL {
				delete(s.entries, k)
			}
		}

		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.lastSeen = now

	return e.limiter
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// limitKey 返回请求的限流键，global 模式下所有请求共用一个键.
func limitKey(c *gin.Context, mode string) string {
	switch {
	case strings.HasPrefix(mode, "header:"):
		if v := c.GetHeader(strings.TrimPrefix(mode, "header:")); v != "" {
			return "h:" + v
		}

		return "ip:" + c.ClientIP()
	case mode == "ip":
		return "ip:" + c.ClientIP()
	default:
		return "global"
	}
}

// RateLimitMiddleware 令牌桶限流，超限返回 429 并附 Retry-After.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	limiters := newLimiterSet(cfg)
	retryAfter := strconv.Itoa(max(1, int(1/cfg.RPS)))

	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, cfg.Exempt) {
			c.Next()

			return
		}

		if !limiters.get(limitKey(c, mode)).Allow() {
			metrics.RejectedRequests.WithLabelValues("rate_limited").Inc()
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errRateLimited)

			return
		}

		c.Next()
	}
}

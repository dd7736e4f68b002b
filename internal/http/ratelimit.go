package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/authflow/internal/log"
	"github.com/tazhibayda/authflow/internal/metrics"
	"github.com/tazhibayda/authflow/internal/repo"
)

const msgTooManyRequests = "Too many requests. Please try again later"

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter shares counters between replicas.
type RedisLimiter struct {
	rds    *repo.Redis
	limit  int
	window time.Duration
}

func NewRedisLimiter(rds *repo.Redis, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rds: rds, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rds.Incr(ctx, "rl:"+key, l.window)
	if err != nil {
		return true, err
	}
	return n <= int64(l.limit), nil
}

type window struct {
	hits  int
	start time.Time
}

// MemoryLimiter keeps counters in process. Used when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(limit int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), limit: limit, size: size, now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.size {
		if len(l.windows) >= 10_000 {
			l.sweep(now)
		}
		l.windows[key] = &window{hits: 1, start: now}
		return true, nil
	}
	if w.hits < l.limit {
		w.hits++
		return true, nil
	}
	return false, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.size {
			delete(l.windows, k)
		}
	}
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		return host
	}
	return ip
}

// RateLimit rejects a client that exceeds the limiter's budget for this
// route. A limiter backend error lets the request through.
func RateLimit(l Limiter, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		allowed, err := l.Allow(c.Request.Context(), name+":"+ClientIP(c))
		if err != nil {
			log.Ctx(c.Request.Context()).Warn("rate limiter unavailable", zap.String("route", name), zap.Error(err))
		}
		if !allowed {
			metrics.RateLimited.WithLabelValues(name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, statusResp{Message: msgTooManyRequests})
			return
		}
		c.Next()
	}
}

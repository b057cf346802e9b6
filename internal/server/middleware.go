package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"engagerag/internal/metrics"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns a fresh UUID to every request. A client supplied
// X-Request-ID is only logged.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("client provided request ID mapped to server ID")
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, ok := c.Get(RequestIDKey); ok {
			fields["request_id"] = rid
		}
		log.WithFields(fields).Info("request")
	}
}

// Prometheus records HTTP request duration and count per route pattern.
func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(requestsPerSecond),
		b:        burst,
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[ip] = l
	}
	return l
}

// Handler returns gin middleware rejecting requests over the limit with 429.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// respondError writes a JSON error body carrying the request id and aborts.
func respondError(c *gin.Context, status int, code, message string) {
	resp := gin.H{"code": code, "message": message}
	if rid, ok := c.Get(RequestIDKey); ok {
		resp["request_id"] = rid
	}
	c.AbortWithStatusJSON(status, resp)
}

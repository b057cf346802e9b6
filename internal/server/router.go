// Package server exposes the analytics engine and the dashboard endpoints over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"engagerag/internal/domain"
	"engagerag/internal/history"
	"engagerag/internal/service"
)

// Answerer is the engine surface the chat handlers need.
type Answerer interface {
	Answer(ctx context.Context, query string, history []domain.Exchange) string
	Status() service.Status
}

// Deps holds everything the router wires together.
type Deps struct {
	Log         *logrus.Logger
	Engine      Answerer
	History     history.Store
	CORSOrigins []string
	RatePerSec  float64
	Burst       int
	Version     string
}

const maxBodySize = 1 << 20

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(deps Deps) http.Handler {
	r := gin.New()
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(RequestID(deps.Log))
	r.Use(accessLog(deps.Log))
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	})
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))
	if deps.RatePerSec > 0 {
		r.Use(NewRateLimiter(deps.RatePerSec, deps.Burst).Handler())
	}
	r.Use(Prometheus())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers{engine: deps.Engine, history: deps.History, log: deps.Log, version: deps.Version}
	r.GET("/", h.root)

	api := r.Group("/api")
	api.GET("/health", h.health)
	api.POST("/chat", h.chat)
	api.GET("/chat/history", h.chatHistory)
	api.POST("/analytics", h.analytics)

	// dashboard endpoints answer with and without the /api prefix
	for _, g := range []*gin.RouterGroup{api, &r.RouterGroup} {
		g.GET("/recommendations", h.recommendations)
		g.GET("/best-times", h.bestTimes)
		g.GET("/metrics/summary", h.metricsSummary)
		g.POST("/upload", h.upload)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", SessionHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        1 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

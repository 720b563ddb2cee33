// Package dashboard serves the operator UI: an ad-hoc agent query
// endpoint and a view over the append-only alert history.
package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/history"
)

// AgentProvider constructs an agent for a query strategy. Implemented by
// *agent.Factory; stubbed in tests.
type AgentProvider interface {
	New(strategy agent.Strategy) (agent.Agent, error)
}

// Server holds the dashboard's collaborators.
type Server struct {
	cfg    *config.Config
	store  history.Store
	agents AgentProvider
	logger *zap.Logger
}

// NewServer creates a dashboard Server.
func NewServer(cfg *config.Config, store history.Store, agents AgentProvider, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, store: store, agents: agents, logger: logger}
}

// Router builds the gin engine with the full middleware chain and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Request body size limit (1 MB)
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
		c.Next()
	})

	if s.cfg.RateLimitRPS > 0 {
		router.Use(RateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitRPS*2))
	}

	router.Use(requestLogger(s.logger))
	router.Use(prometheusMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metricsHandler())
	router.GET("/", s.ServeIndex)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", s.Query)
		v1.GET("/alerts", s.Alerts)
	}
	return router
}

// requestLogger returns a gin middleware that logs each request with zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

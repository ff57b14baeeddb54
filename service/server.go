package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RouterConfig lists the handlers mounted on the router. Nil handlers are
// skipped so partial deployments (library-only callers, tests) stay easy.
type RouterConfig struct {
	Log *Logger

	RecommendHandler *RecommendHandler
	FeedbackHandler  *FeedbackHandler
	HealthHandler    *HealthHandler
}

// NewRouter builds the gin engine with all configured routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(panicRecovery(cfg.Log)))
	if cfg.Log != nil {
		r.Use(requestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.RecommendHandler != nil {
		r.POST("/recommend", cfg.RecommendHandler.Recommend)
	}
	if cfg.FeedbackHandler != nil {
		r.POST("/feedback", cfg.FeedbackHandler.Feedback)
	}

	return r
}

// Server wraps the gin engine.
type Server struct {
	Engine *gin.Engine
}

// NewServer creates a server from the router config.
func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

// Run blocks serving HTTP on the given address.
func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}

// panicRecovery keeps the error envelope intact on internal failures:
// a recovered panic answers 500 with the same fixed body as any other
// recommendation failure, never an empty response.
func panicRecovery(log *Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		if log != nil {
			log.Error("panic recovered",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"panic", recovered,
			)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errRecommendFailed})
	}
}

// requestLogger emits one structured line per request.
func requestLogger(log *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

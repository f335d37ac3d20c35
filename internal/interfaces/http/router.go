// Package http wires the gin route tree and HTTP server for the fingerprint
// API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemFP-Engine/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required to
// construct the complete route tree.
type RouterConfig struct {
	FingerprintHandler *handlers.FingerprintHandler
	SimilarityHandler  *handlers.SimilarityHandler
	HealthHandler      *handlers.HealthHandler

	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	// Mode is the gin mode: debug, release, or test.
	Mode string

	// MaxBodySize bounds request bodies in bytes; zero disables the limit.
	MaxBodySize int64

	// CORS enables cross-origin handling when non-nil.
	CORS *middleware.CORSConfig
}

// NewRouter constructs the complete route tree as an http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.BodySizeLimit(cfg.MaxBodySize))
	}
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	registerFingerprintRoutes(api, cfg.FingerprintHandler)
	registerSimilarityRoutes(api, cfg.SimilarityHandler)

	return r
}

// registerFingerprintRoutes mounts fingerprint endpoints under /fingerprints.
func registerFingerprintRoutes(r *gin.RouterGroup, h *handlers.FingerprintHandler) {
	if h == nil {
		return
	}
	fp := r.Group("/fingerprints")
	fp.POST("", h.Compute)
	fp.POST("/batch", h.ComputeBatch)
	fp.GET("/keys", h.Keys)
	fp.POST("/index", h.Index)
	fp.POST("/search", h.Search)
}

// registerSimilarityRoutes mounts comparison endpoints under /similarity.
func registerSimilarityRoutes(r *gin.RouterGroup, h *handlers.SimilarityHandler) {
	if h == nil {
		return
	}
	r.POST("/similarity", h.Compare)
}

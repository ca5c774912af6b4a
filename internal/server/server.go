// Package server exposes predictions and the latest analytics snapshot over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/analytics"
	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/pipeline"
)

const DefaultAddr = ":8080"

// Predictor is the prediction capability served by the API.
type Predictor interface {
	PredictProfile(ctx context.Context, profile candidate.Profile) (*pipeline.Result, error)
}

// SnapshotSource returns the latest stored snapshot.
type SnapshotSource interface {
	Load(ctx context.Context) (*analytics.Snapshot, error)
}

// Config configures the HTTP listener.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type Server struct {
	cfg       Config
	logger    *zap.Logger
	predictor Predictor
	snapshots SnapshotSource
	assets    pipeline.AssetSource
	metrics   *Metrics
	registry  *prometheus.Registry
	router    *gin.Engine
	http      *http.Server
}

// New builds the router. assetSource may be nil, in which case health does
// not report asset readiness.
func New(cfg Config, log *zap.Logger, predictor Predictor, snapshots SnapshotSource, assetSource pipeline.AssetSource) (*Server, error) {
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot source is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:       cfg,
		logger:    logger.WithComponent(log, "server"),
		predictor: predictor,
		snapshots: snapshots,
		assets:    assetSource,
		metrics:   NewMetrics(registry),
		registry:  registry,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger), s.metrics.middleware())

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.POST("/predict", s.predict)
		api.GET("/analytics", s.analytics)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.http.Shutdown(ctx)
}

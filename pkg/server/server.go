// Package server exposes the dashboard over HTTP for browsers and
// scrapers: the current view, the chart styling and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"crowd-dashboard/pkg/model"
	"crowd-dashboard/pkg/storage"
)

// ViewSource is satisfied by *dashboard.Dashboard.
type ViewSource interface {
	View() (model.View, error)
	Options() model.ChartOptions
}

type DashboardResponse struct {
	Text      string    `json:"text"`
	Latest    int       `json:"latest"`
	Labels    []string  `json:"labels"`
	Counts    []int     `json:"counts"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	source     ViewSource
	log        logrus.FieldLogger
}

func New(listen string, source ViewSource, gatherer prometheus.Gatherer, log logrus.FieldLogger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		engine: engine,
		source: source,
		log:    log,
	}
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	api := engine.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/chart/options", s.getChartOptions)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) getDashboard(c *gin.Context) {
	v, err := s.source.View()
	if errors.Is(err, storage.ErrNoView) {
		v = model.EmptyView(time.Time{})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Text:      v.Text,
		Latest:    v.Latest,
		Labels:    nonNilStrings(v.Chart.Labels),
		Counts:    nonNilInts(v.Chart.Counts),
		UpdatedAt: v.UpdatedAt,
	})
}

func (s *Server) getChartOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Options())
}

// ListenAndServe blocks until ctx is done, then shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("http server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown")
	}
	return nil
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

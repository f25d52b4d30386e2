// Package httpapi is the thin HTTP boundary over the request coordinator:
// request validation, status mapping and response shapes. No pipeline logic
// lives here.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/tribune-news/internal/feeds"
	"github.com/deusflow/tribune-news/internal/metrics"
	"github.com/deusflow/tribune-news/internal/service"
)

// NewsService is what the handlers need from the coordinator.
type NewsService interface {
	QuickView(ctx context.Context, scope, query string, daysBack int) (service.QuickView, error)
	Details(ctx context.Context, scope, query string, daysBack int) (service.DetailsView, error)
	Browse(ctx context.Context, category, query string, daysBack, maxItems int) (service.BrowseView, error)
}

type Server struct {
	svc      NewsService
	registry *feeds.Registry
}

func NewServer(svc NewsService, registry *feeds.Registry) *Server {
	return &Server{svc: svc, registry: registry}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.home)
	router.GET("/top_3_titles", s.top3Titles)
	router.GET("/see_more_details", s.seeMoreDetails)
	router.GET("/category_news", s.categoryNews)
	router.GET("/health", s.health)
	router.GET("/metrics", s.metricsStats)

	return router
}

func (s *Server) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":    "Welcome to AI News Simulator",
		"regions":    s.registry.Regions(),
		"categories": s.registry.Categories(),
	})
}

func (s *Server) health(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) metricsStats(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}

// statusFor maps coordinator errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, feeds.ErrUnknownScope):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoData), errors.Is(err, service.ErrNoPriorFetch):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"detail": err.Error()})
}

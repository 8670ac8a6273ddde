// Package server exposes the HTTP API: refreshing a location's alerts,
// managing the alert list and preferences, favorites, forecast and
// location search.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skyhealth/internal/alert"
	"skyhealth/internal/database"
	"skyhealth/internal/weather"
)

// WeatherAPI is the provider surface the handlers need beyond the
// alert pipeline itself.
type WeatherAPI interface {
	Forecast(ctx context.Context, lat, lon float64) ([]weather.DailyForecast, error)
	SearchLocations(ctx context.Context, query string) ([]weather.Place, error)
}

// Server is the HTTP API server
type Server struct {
	engine       *gin.Engine
	httpServer   *http.Server
	orchestrator *alert.Orchestrator
	store        *alert.Store
	prefs        *alert.PreferenceStore
	weatherAPI   WeatherAPI
	db           *database.DB
	log          *logrus.Logger
}

// New creates the API server. db may be nil; favorite endpoints then
// report the feature unavailable.
func New(port int, orchestrator *alert.Orchestrator, store *alert.Store, prefs *alert.PreferenceStore, weatherAPI WeatherAPI, db *database.DB, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine:       engine,
		orchestrator: orchestrator,
		store:        store,
		prefs:        prefs,
		weatherAPI:   weatherAPI,
		db:           db,
		log:          log,
	}

	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())
	s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api/v1")
	{
		api.POST("/refresh", s.handleRefresh)

		api.GET("/alerts", s.handleListAlerts)
		api.GET("/alerts/active", s.handleActiveAlerts)
		api.POST("/alerts/:id/dismiss", s.handleDismissAlert)
		api.DELETE("/alerts", s.handleClearAlerts)

		api.GET("/preferences", s.handleGetPreferences)
		api.PUT("/preferences", s.handleUpdatePreferences)

		api.GET("/favorites", s.handleListFavorites)
		api.POST("/favorites", s.handleAddFavorite)
		api.DELETE("/favorites/:id", s.handleRemoveFavorite)

		api.GET("/forecast", s.handleForecast)
		api.GET("/locations/search", s.handleSearchLocations)
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		c.Next()

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	}
}

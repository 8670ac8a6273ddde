package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skyhealth/internal/alert"
	"skyhealth/internal/anomaly"
	"skyhealth/internal/database"
	"skyhealth/internal/healthtips"
)

type refreshRequest struct {
	Location string   `json:"location" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required"`
	Lon      *float64 `json:"lon" binding:"required"`
}

type refreshResponse struct {
	*alert.RefreshResult
	HealthTips    []healthtips.Tip `json:"health_tips"`
	EmergencyTips []healthtips.Tip `json:"emergency_tips"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location, lat and lon are required"})
		return
	}

	result, err := s.orchestrator.Refresh(c.Request.Context(), alert.Location{
		Name: req.Location,
		Lat:  *req.Lat,
		Lon:  *req.Lon,
	})
	if err != nil {
		if errors.Is(err, alert.ErrAllSourcesUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "weather data is currently unavailable",
				"retryable": true,
			})
			return
		}
		s.log.WithError(err).WithField("location", req.Location).Error("Refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	conditions := tipConditions(result)
	c.JSON(http.StatusOK, refreshResponse{
		RefreshResult: result,
		HealthTips:    healthtips.Relevant(conditions),
		EmergencyTips: healthtips.Emergency(conditions),
	})
}

// tipConditions maps a refresh result onto the tip matching inputs
func tipConditions(result *alert.RefreshResult) healthtips.Conditions {
	conditions := healthtips.Conditions{}

	if result.Weather != nil {
		conditions.Temperature = result.Weather.Temperature
	}
	if result.UVIndex != nil {
		conditions.UVIndex = *result.UVIndex
	}
	if result.AirQuality != nil {
		conditions.HasAirQuality = true
		conditions.AQITier = result.AirQuality.Tier
	}
	if n := len(result.Anomalies); n > 0 {
		today := result.Anomalies[n-1]
		conditions.HeatWave = today.Classification == anomaly.ClassHeatWave
		conditions.ColdWave = today.Classification == anomaly.ClassColdWave
	}
	return conditions
}

func (s *Server) handleListAlerts(c *gin.Context) {
	alerts := s.store.All(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleActiveAlerts(c *gin.Context) {
	alerts := s.store.GetActive(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleDismissAlert(c *gin.Context) {
	id := c.Param("id")
	if !s.store.Dismiss(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": id})
}

func (s *Server) handleClearAlerts(c *gin.Context) {
	s.store.ClearAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.prefs.Get(c.Request.Context()))
}

func (s *Server) handleUpdatePreferences(c *gin.Context) {
	var prefs alert.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences document"})
		return
	}

	if err := s.prefs.Update(c.Request.Context(), prefs); err != nil {
		s.log.WithError(err).Error("Failed to update preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

type favoriteRequest struct {
	Name    string   `json:"name" binding:"required"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" binding:"required"`
	Lon     *float64 `json:"lon" binding:"required"`
}

func (s *Server) handleListFavorites(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "favorites are unavailable"})
		return
	}

	favorites, err := s.db.ListFavorites(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to list favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list favorites"})
		return
	}
	if favorites == nil {
		favorites = []database.FavoriteLocation{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

func (s *Server) handleAddFavorite(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "favorites are unavailable"})
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, lat and lon are required"})
		return
	}

	fav := database.FavoriteLocation{
		Name:    req.Name,
		Country: req.Country,
		Lat:     *req.Lat,
		Lon:     *req.Lon,
	}
	if err := s.db.AddFavorite(c.Request.Context(), &fav); err != nil {
		s.log.WithError(err).Error("Failed to add favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (s *Server) handleRemoveFavorite(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "favorites are unavailable"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid favorite id"})
		return
	}

	if err := s.db.RemoveFavorite(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		s.log.WithError(err).Error("Failed to remove favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleForecast(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}

	forecasts, err := s.weatherAPI.Forecast(c.Request.Context(), lat, lon)
	if err != nil {
		s.log.WithError(err).Error("Forecast fetch failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "forecast is currently unavailable", "retryable": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": forecasts})
}

func (s *Server) handleSearchLocations(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	places, err := s.weatherAPI.SearchLocations(c.Request.Context(), query)
	if err != nil {
		s.log.WithError(err).Error("Location search failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "location search is currently unavailable", "retryable": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": places})
}

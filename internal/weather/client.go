package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// Client fetches readings from the OpenWeather API. All calls go through
// a circuit breaker so a flapping provider stops being hammered, and honor
// the configured request timeout plus caller cancellation.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	apiKey     string
	baseURL    string
	geoURL     string
	log        *logrus.Logger
	now        func() time.Time
}

var _ Source = (*Client)(nil)

// NewClient creates an OpenWeather client
func NewClient(apiKey, baseURL, geoURL string, timeout time.Duration, log *logrus.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		geoURL:     strings.TrimRight(geoURL, "/"),
		log:        log,
		now:        time.Now,
	}
}

// Current fetches the current conditions for the given coordinates
func (c *Client) Current(ctx context.Context, lat, lon float64) (*CurrentConditions, error) {
	resp, err := c.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	cond := &CurrentConditions{
		Location:     resp.Name,
		Temperature:  math.Round(resp.Main.Temp),
		FeelsLike:    math.Round(resp.Main.FeelsLike),
		Humidity:     resp.Main.Humidity,
		Pressure:     resp.Main.Pressure,
		WindSpeed:    resp.Wind.Speed,
		VisibilityKm: resp.Visibility / 1000,
		CloudCover:   resp.Clouds.All,
		Lat:          resp.Coord.Lat,
		Lon:          resp.Coord.Lon,
		Sunrise:      time.Unix(resp.Sys.Sunrise, 0),
		Sunset:       time.Unix(resp.Sys.Sunset, 0),
	}
	if len(resp.Weather) > 0 {
		cond.Description = resp.Weather[0].Description
		cond.Icon = resp.Weather[0].Icon
	}

	return cond, nil
}

// AirQuality fetches the air pollution reading for the given coordinates
func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (*AirQualityReading, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("appid", c.apiKey)

	var resp airPollutionResponse
	if err := c.getJSON(ctx, c.baseURL+"/air_pollution?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}

	if len(resp.List) == 0 {
		return nil, fmt.Errorf("air quality response contained no readings")
	}

	entry := resp.List[0]
	return &AirQualityReading{
		Tier:            entry.Main.AQI,
		PM25:            entry.Components.PM25,
		PM10:            entry.Components.PM10,
		O3:              entry.Components.O3,
		NO2:             entry.Components.NO2,
		SO2:             entry.Components.SO2,
		CO:              entry.Components.CO,
		Label:           QualityLabel(entry.Main.AQI),
		Recommendations: QualityRecommendations(entry.Main.AQI),
	}, nil
}

// UVIndex estimates the current UV index for the given coordinates.
// The provider's UV endpoint is not available on the free tier, so the
// index is derived from cloud cover, conditions and time of day.
func (c *Client) UVIndex(ctx context.Context, lat, lon float64) (float64, error) {
	resp, err := c.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch weather for UV estimation: %w", err)
	}

	now := c.now()
	sunrise := time.Unix(resp.Sys.Sunrise, 0)
	sunset := time.Unix(resp.Sys.Sunset, 0)
	if now.Before(sunrise) || now.After(sunset) {
		return 0, nil
	}

	// Base UV for a tropical location, scaled down by cloud cover
	var base float64
	switch {
	case resp.Clouds.All < 20:
		base = 10
	case resp.Clouds.All < 50:
		base = 8
	case resp.Clouds.All < 80:
		base = 6
	default:
		base = 3
	}

	if len(resp.Weather) > 0 {
		main := strings.ToLower(resp.Weather[0].Main)
		if strings.Contains(main, "rain") || strings.Contains(main, "storm") {
			base = math.Max(1, base-3)
		}
	}

	// Peaks around midday
	hour := now.Hour()
	multiplier := 0.6
	switch {
	case hour >= 10 && hour <= 14:
		multiplier = 1.0
	case hour >= 9 && hour <= 15:
		multiplier = 0.8
	}

	return math.Round(base * multiplier), nil
}

// Forecast fetches the 3-hourly forecast and aggregates it into up to
// seven daily min/max/precipitation entries.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]DailyForecast, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.baseURL+"/forecast?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	type dayAgg struct {
		min, max, precip float64
		description      string
		icon             string
	}

	days := make(map[string]*dayAgg)
	var order []string
	for _, item := range resp.List {
		date := time.Unix(item.Dt, 0).Format("2006-01-02")
		agg, ok := days[date]
		if !ok {
			agg = &dayAgg{min: item.Main.Temp, max: item.Main.Temp}
			if len(item.Weather) > 0 {
				agg.description = item.Weather[0].Description
				agg.icon = item.Weather[0].Icon
			}
			days[date] = agg
			order = append(order, date)
		}
		agg.min = math.Min(agg.min, item.Main.Temp)
		agg.max = math.Max(agg.max, item.Main.Temp)
		agg.precip += item.Rain.ThreeHours + item.Snow.ThreeHours
	}
	sort.Strings(order)

	var forecasts []DailyForecast
	for _, date := range order {
		agg := days[date]
		forecasts = append(forecasts, DailyForecast{
			Date:          date,
			MinTemp:       math.Round(agg.min),
			MaxTemp:       math.Round(agg.max),
			Description:   agg.description,
			Icon:          agg.icon,
			Precipitation: math.Round(agg.precip),
		})
		if len(forecasts) == 7 {
			break
		}
	}

	return forecasts, nil
}

// SearchLocations resolves a free-text place name via the geocoding API
func (c *Client) SearchLocations(ctx context.Context, queryText string) ([]Place, error) {
	query := url.Values{}
	query.Set("q", queryText)
	query.Set("limit", "5")
	query.Set("appid", c.apiKey)

	var resp []geocodingEntry
	if err := c.getJSON(ctx, c.geoURL+"/direct?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to search location: %w", err)
	}

	places := make([]Place, 0, len(resp))
	for _, entry := range resp {
		places = append(places, Place{
			Name:    entry.Name,
			Country: entry.Country,
			Lat:     entry.Lat,
			Lon:     entry.Lon,
		})
	}
	return places, nil
}

func (c *Client) fetchCurrent(ctx context.Context, lat, lon float64) (*currentWeatherResponse, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var resp currentWeatherResponse
	if err := c.getJSON(ctx, c.baseURL+"/weather?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	return &resp, nil
}

// getJSON performs a GET through the circuit breaker and decodes the body
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
		}

		return data, nil
	})
	if err != nil {
		c.log.WithError(err).Debug("Provider request failed")
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed provider payload: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Provider response shapes

type currentWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Visibility float64 `json:"visibility"`
	Coord      struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			O3   float64 `json:"o3"`
			NO2  float64 `json:"no2"`
			SO2  float64 `json:"so2"`
			CO   float64 `json:"co"`
		} `json:"components"`
	} `json:"list"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
		Snow struct {
			ThreeHours float64 `json:"3h"`
		} `json:"snow"`
	} `json:"list"`
}

type geocodingEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

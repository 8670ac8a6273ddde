package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", server.URL, server.URL, 5*time.Second, logrus.New())
	return client, server
}

func TestClient_Current(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("appid") != "test-key" {
			t.Error("API key not sent")
		}
		w.Write([]byte(`{
			"name": "Jakarta",
			"weather": [{"main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
			"main": {"temp": 31.4, "feels_like": 35.1, "humidity": 74, "pressure": 1009},
			"wind": {"speed": 3.6},
			"clouds": {"all": 40},
			"visibility": 8000,
			"coord": {"lat": -6.2, "lon": 106.8},
			"sys": {"sunrise": 1700000000, "sunset": 1700043200}
		}`))
	}))

	cond, err := client.Current(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}

	if cond.Location != "Jakarta" {
		t.Errorf("Expected Jakarta, got %s", cond.Location)
	}
	if cond.Temperature != 31 {
		t.Errorf("Expected rounded temperature 31, got %.1f", cond.Temperature)
	}
	if cond.VisibilityKm != 8 {
		t.Errorf("Expected visibility 8km, got %.1f", cond.VisibilityKm)
	}
	if cond.Description != "scattered clouds" {
		t.Errorf("Unexpected description: %s", cond.Description)
	}
}

func TestClient_CurrentProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	}))

	if _, err := client.Current(context.Background(), 0, 0); err == nil {
		t.Fatal("Expected error on non-200 response")
	}
}

func TestClient_AirQuality(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"list": [{
				"main": {"aqi": 4},
				"components": {"pm2_5": 55.2, "pm10": 80.1, "o3": 60.0, "no2": 40.5, "so2": 10.0, "co": 600.0}
			}]
		}`))
	}))

	reading, err := client.AirQuality(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("AirQuality failed: %v", err)
	}

	if reading.Tier != 4 {
		t.Errorf("Expected tier 4, got %d", reading.Tier)
	}
	if reading.Label != "Poor" {
		t.Errorf("Expected label Poor, got %s", reading.Label)
	}
	if len(reading.Recommendations) != 2 {
		t.Errorf("Expected 2 recommendations for tier 4, got %d", len(reading.Recommendations))
	}
	if reading.PM25 != 55.2 {
		t.Errorf("Expected pm2.5 55.2, got %.1f", reading.PM25)
	}
}

func TestClient_AirQualityEmptyList(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": []}`))
	}))

	if _, err := client.AirQuality(context.Background(), 0, 0); err == nil {
		t.Fatal("Expected error on empty reading list")
	}
}

func TestClient_UVIndexMiddayClearSky(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	client, _ := newTestClient(t, uvHandler(now, 10, "Clear"))
	client.now = func() time.Time { return now }

	uv, err := client.UVIndex(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("UVIndex failed: %v", err)
	}
	if uv != 10 {
		t.Errorf("Expected UV 10 for clear midday sky, got %.1f", uv)
	}
}

func TestClient_UVIndexRainReducesEstimate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	client, _ := newTestClient(t, uvHandler(now, 90, "Rain"))
	client.now = func() time.Time { return now }

	uv, err := client.UVIndex(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("UVIndex failed: %v", err)
	}
	// Overcast base 3, minus 3 for rain, floored at 1
	if uv != 1 {
		t.Errorf("Expected UV 1 for rainy overcast sky, got %.1f", uv)
	}
}

func TestClient_UVIndexZeroAtNight(t *testing.T) {
	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	night := time.Date(2025, 6, 1, 23, 0, 0, 0, time.Local)

	client, _ := newTestClient(t, uvHandler(noon, 0, "Clear"))
	client.now = func() time.Time { return night }

	uv, err := client.UVIndex(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("UVIndex failed: %v", err)
	}
	if uv != 0 {
		t.Errorf("Expected UV 0 at night, got %.1f", uv)
	}
}

// uvHandler serves a current-weather payload with sunrise/sunset spanning
// six hours either side of the given midday instant.
func uvHandler(midday time.Time, clouds int, weatherMain string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sunrise := midday.Add(-6 * time.Hour).Unix()
		sunset := midday.Add(6 * time.Hour).Unix()
		body := `{
			"name": "Jakarta",
			"weather": [{"main": "` + weatherMain + `", "description": "", "icon": ""}],
			"main": {"temp": 30, "feels_like": 33, "humidity": 70, "pressure": 1010},
			"clouds": {"all": ` + strconv.Itoa(clouds) + `},
			"coord": {"lat": -6.2, "lon": 106.8},
			"sys": {"sunrise": ` + strconv.FormatInt(sunrise, 10) + `, "sunset": ` + strconv.FormatInt(sunset, 10) + `}
		}`
		w.Write([]byte(body))
	})
}

func TestClient_Forecast(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		day1 := time.Date(2025, 6, 1, 6, 0, 0, 0, time.Local).Unix()
		day1b := time.Date(2025, 6, 1, 15, 0, 0, 0, time.Local).Unix()
		day2 := time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local).Unix()
		w.Write([]byte(`{"list": [
			{"dt": ` + strconv.FormatInt(day1, 10) + `, "main": {"temp": 26.2}, "weather": [{"description": "light rain", "icon": "10d"}], "rain": {"3h": 1.5}},
			{"dt": ` + strconv.FormatInt(day1b, 10) + `, "main": {"temp": 32.8}, "weather": [{"description": "light rain", "icon": "10d"}], "rain": {"3h": 0.5}},
			{"dt": ` + strconv.FormatInt(day2, 10) + `, "main": {"temp": 29.0}, "weather": [{"description": "clear sky", "icon": "01d"}]}
		]}`))
	}))

	forecasts, err := client.Forecast(context.Background(), -6.2, 106.8)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(forecasts) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(forecasts))
	}
	if forecasts[0].Date != "2025-06-01" {
		t.Errorf("Expected first day 2025-06-01, got %s", forecasts[0].Date)
	}
	if forecasts[0].MinTemp != 26 || forecasts[0].MaxTemp != 33 {
		t.Errorf("Unexpected min/max: %.0f/%.0f", forecasts[0].MinTemp, forecasts[0].MaxTemp)
	}
	if forecasts[0].Precipitation != 2 {
		t.Errorf("Expected precipitation 2, got %.1f", forecasts[0].Precipitation)
	}
}

func TestClient_SearchLocations(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "Jakarta" {
			t.Errorf("Unexpected query: %s", r.URL.Query().Get("q"))
		}
		w.Write([]byte(`[{"name": "Jakarta", "country": "ID", "lat": -6.2, "lon": 106.8}]`))
	}))

	places, err := client.SearchLocations(context.Background(), "Jakarta")
	if err != nil {
		t.Fatalf("SearchLocations failed: %v", err)
	}
	if len(places) != 1 || places[0].Name != "Jakarta" || places[0].Country != "ID" {
		t.Errorf("Unexpected places: %+v", places)
	}
}

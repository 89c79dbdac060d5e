package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
)

// Variables returns the five variables every mock dataset carries.
func Variables() []domain.Variable {
	return []domain.Variable{
		{ID: "temperature", DisplayName: "Temperature", Color: "#ef4444", Unit: "°C", Min: -10, Max: 40},
		{ID: "humidity", DisplayName: "Humidity", Color: "#3b82f6", Unit: "%", Min: 0, Max: 100},
		{ID: "pressure", DisplayName: "Pressure", Color: "#10b981", Unit: "hPa", Min: 980, Max: 1040},
		{ID: "windSpeed", DisplayName: "Wind Speed", Color: "#f59e0b", Unit: "m/s", Min: 0, Max: 25},
		{ID: "precipitation", DisplayName: "Precipitation", Color: "#8b5cf6", Unit: "mm", Min: 0, Max: 50},
	}
}

// SeedZones returns the two monitoring zones shipped with the mock dataset.
func SeedZones() []domain.Polygon {
	lat, lng := domain.DefaultCenter.Lat, domain.DefaultCenter.Lng
	return []domain.Polygon{
		{
			ID:   "zone-1",
			Name: "High Temperature Zone",
			Vertices: []domain.LatLng{
				{Lat: lat + 0.05, Lng: lng + 0.05},
				{Lat: lat + 0.05, Lng: lng + 0.1},
				{Lat: lat + 0.1, Lng: lng + 0.1},
				{Lat: lat + 0.1, Lng: lng + 0.05},
			},
			Color:    "#ef4444",
			Opacity:  0.3,
			Metadata: map[string]any{"type": "temperature_zone", "threshold": 30.0},
		},
		{
			ID:   "zone-2",
			Name: "Low Pressure Area",
			Vertices: []domain.LatLng{
				{Lat: lat - 0.05, Lng: lng - 0.05},
				{Lat: lat - 0.05, Lng: lng},
				{Lat: lat, Lng: lng},
				{Lat: lat, Lng: lng - 0.05},
			},
			Color:    "#10b981",
			Opacity:  0.3,
			Metadata: map[string]any{"type": "pressure_zone", "threshold": 1000.0},
		},
	}
}

// Mock generates a deterministic dataset around New York City. Each point sits
// on one of Timestamps and carries a value for every variable, correlated with
// its location and time.
type Mock struct {
	Points     int
	Seed       int64
	Timestamps []int64
}

// Load generates the dataset.
func (m *Mock) Load(_ context.Context) (domain.Dataset, error) {
	if len(m.Timestamps) == 0 {
		return domain.Dataset{}, fmt.Errorf("mock source: no timestamps to place points on")
	}
	vars := Variables()
	rng := rand.New(rand.NewSource(m.Seed)) //nolint:gosec // synthetic data

	points := make([]domain.SamplePoint, 0, m.Points)
	for i := 0; i < m.Points; i++ {
		lat := domain.DefaultCenter.Lat + (rng.Float64()-0.5)*0.2
		lng := domain.DefaultCenter.Lng + (rng.Float64()-0.5)*0.2
		step := rng.Intn(len(m.Timestamps))

		values := make(map[string]float64, len(vars))
		for _, v := range vars {
			location := math.Sin(lat*10) * math.Cos(lng*10)
			timeOfDay := math.Sin(float64(step) * 0.1)
			noise := (rng.Float64() - 0.5) * 0.5
			t := (location + timeOfDay + noise + 2) / 4
			values[v.ID] = math.Round((v.Min+t*(v.Max-v.Min))*100) / 100
		}

		points = append(points, domain.SamplePoint{
			ID:        fmt.Sprintf("point-%d", i),
			Latitude:  lat,
			Longitude: lng,
			Timestamp: m.Timestamps[step],
			Values:    values,
		})
	}

	return domain.Dataset{Variables: vars, Points: points, Polygons: SeedZones()}, nil
}

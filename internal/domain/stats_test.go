package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointStats(t *testing.T) {
	points := []SamplePoint{
		point("a", 1, map[string]float64{"v": 2}),
		point("b", 2, map[string]float64{"v": 8}),
		point("c", 3, map[string]float64{"w": 100}),
		point("d", 4, map[string]float64{"v": -1}),
	}
	s := PointStats(points, "v")
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.Equal(t, -1.0, s.Min)
	assert.Equal(t, 8.0, s.Max)

	assert.Equal(t, ValueStats{}, PointStats(nil, "v"))
}

func TestBucketStats_OnlyInsideWindow(t *testing.T) {
	buckets := []AggregatedBucket{
		{Timestamp: 1, Mean: 100, Count: 1},
		{Timestamp: 5, Mean: 10, Count: 2},
		{Timestamp: 6, Mean: 20, Count: 1},
		{Timestamp: 9, Mean: -100, Count: 1},
	}
	s := BucketStats(buckets, TimeWindow{Start: 5, End: 6})
	assert.Equal(t, ValueStats{Count: 2, Mean: 15, Min: 10, Max: 20}, s)

	assert.Zero(t, BucketStats(buckets, TimeWindow{Start: 2, End: 4}).Count)
}

func TestCenter(t *testing.T) {
	assert.Equal(t, DefaultCenter, Center(nil))

	points := []SamplePoint{
		{Latitude: 10, Longitude: 20},
		{Latitude: 20, Longitude: 40},
	}
	assert.Equal(t, LatLng{Lat: 15, Lng: 30}, Center(points))
}

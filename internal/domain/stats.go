package domain

// DefaultCenter is used when there are no points to center on (New York City).
var DefaultCenter = LatLng{Lat: 40.7128, Lng: -74.0060}

// ValueStats summarizes a set of values. All fields are zero when Count is 0.
type ValueStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (s *ValueStats) add(v float64) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	}
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	// Mean holds the running sum until finish.
	s.Mean += v
	s.Count++
}

func (s *ValueStats) finish() {
	if s.Count > 0 {
		s.Mean /= float64(s.Count)
	}
}

// PointStats summarizes the values of variableID carried by points.
func PointStats(points []SamplePoint, variableID string) ValueStats {
	var s ValueStats
	for _, p := range points {
		if v, ok := p.Value(variableID); ok {
			s.add(v)
		}
	}
	s.finish()
	return s
}

// BucketStats summarizes the means of the buckets whose timestamp lies in w.
func BucketStats(buckets []AggregatedBucket, w TimeWindow) ValueStats {
	var s ValueStats
	for _, b := range buckets {
		if w.Contains(b.Timestamp) {
			s.add(b.Mean)
		}
	}
	s.finish()
	return s
}

// Center returns the mean coordinate of points, or DefaultCenter when empty.
func Center(points []SamplePoint) LatLng {
	if len(points) == 0 {
		return DefaultCenter
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Latitude
		lng += p.Longitude
	}
	n := float64(len(points))
	return LatLng{Lat: lat / n, Lng: lng / n}
}

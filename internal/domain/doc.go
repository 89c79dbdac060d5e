// Package domain models the sensor map dashboard: measured variables, geotagged
// sample points, the selected time window, aggregated chart buckets, and drawn
// regions.
//
// # Time Axis
//
// Timestamps are int64 values on a single ordinal axis shared by points, buckets,
// and the timeline slider. The slider grid uses Unix seconds at hourly steps, so
// datasets meant to be filtered by the slider should use Unix seconds too.
//
// # Value Mapping
//
// A variable's [Min, Max] is the normalization domain. A value is normalized to
//
//	t = clamp((value - min) / (max - min), 0, 1)
//
// and drives both marker radius (3 + 7t) and marker alpha (0.3 + 0.7t). A variable
// with Min == Max maps every value to t = 0. A missing variable maps to a neutral
// color and radius 5.
//
// # Filtering and Aggregation
//
// A point passes the filter when its timestamp is inside the inclusive window and
// it carries a value for the selected variable. Aggregation groups the passing
// points by exact timestamp and emits one bucket per timestamp, ascending.
//
// # Invariants
//
//	TimeWindow:  Start <= End after every constructor and mutator (clamped, never rejected).
//	Bucket:      Count >= 1.
//	Polygon:     a committed polygon has at least three vertices.
package domain

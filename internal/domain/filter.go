package domain

import "sort"

// Matches reports whether a point passes the filter for variableID and w.
func Matches(p SamplePoint, variableID string, w TimeWindow) bool {
	if !w.Contains(p.Timestamp) {
		return false
	}
	_, ok := p.Value(variableID)
	return ok
}

// FilterPoints returns, in input order, the points inside w that carry a value
// for variableID. The input slice is not modified.
func FilterPoints(points []SamplePoint, variableID string, w TimeWindow) []SamplePoint {
	out := make([]SamplePoint, 0, len(points))
	for _, p := range points {
		if Matches(p, variableID, w) {
			out = append(out, p)
		}
	}
	return out
}

// Aggregate groups points by exact timestamp and returns one bucket per distinct
// timestamp, ascending. Points without a value for variableID are skipped;
// duplicates are all counted.
func Aggregate(points []SamplePoint, variableID string) []AggregatedBucket {
	groups := make(map[int64]*AggregatedBucket)
	sums := make(map[int64]float64)

	for _, p := range points {
		v, ok := p.Value(variableID)
		if !ok {
			continue
		}
		b, seen := groups[p.Timestamp]
		if !seen {
			groups[p.Timestamp] = &AggregatedBucket{Timestamp: p.Timestamp, Min: v, Max: v, Count: 1}
			sums[p.Timestamp] = v
			continue
		}
		b.Count++
		sums[p.Timestamp] += v
		if v < b.Min {
			b.Min = v
		}
		if v > b.Max {
			b.Max = v
		}
	}

	out := make([]AggregatedBucket, 0, len(groups))
	for ts, b := range groups {
		b.Mean = sums[ts] / float64(b.Count)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

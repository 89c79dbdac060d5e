package region

import (
	"fmt"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection converts polygons to GeoJSON. Rings are closed and use
// [lng, lat] order.
func FeatureCollection(polygons []domain.Polygon) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range polygons {
		ring := make(orb.Ring, 0, len(p.Vertices)+1)
		for _, v := range p.Vertices {
			ring = append(ring, orb.Point{v.Lng, v.Lat})
		}
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = p.ID
		f.Properties["name"] = p.Name
		f.Properties["color"] = p.Color
		f.Properties["opacity"] = p.Opacity
		for k, v := range p.Metadata {
			if _, taken := f.Properties[k]; !taken {
				f.Properties[k] = v
			}
		}
		fc.Append(f)
	}
	return fc
}

// MarshalGeoJSON encodes polygons as a GeoJSON FeatureCollection.
func MarshalGeoJSON(polygons []domain.Polygon) ([]byte, error) {
	b, err := FeatureCollection(polygons).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal regions: %w", err)
	}
	return b, nil
}

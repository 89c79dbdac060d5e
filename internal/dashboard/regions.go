package dashboard

import (
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/draw"
	"github.com/couchcryptid/sensor-map-dashboard/internal/region"
)

// Drawing reports whether polygon drawing mode is on.
func (s *Session) Drawing() bool { return s.drawing.IsDrawing() }

// EnterDrawing turns drawing mode on.
func (s *Session) EnterDrawing() {
	if s.drawing.Enter() {
		s.publishDrawing()
	}
}

// ExitDrawing turns drawing mode off, discarding unfinished vertices.
func (s *Session) ExitDrawing() {
	if s.drawing.Exit() {
		s.publishDrawing()
	}
}

// ToggleDrawing flips drawing mode.
func (s *Session) ToggleDrawing() bool {
	s.drawing.Toggle()
	s.publishDrawing()
	return s.drawing.IsDrawing()
}

func (s *Session) publishDrawing() {
	on := s.drawing.IsDrawing()
	s.publish(domain.ChangeEvent{Kind: domain.ChangeDrawingMode, Drawing: &on})
}

// MapClick adds a vertex while drawing.
func (s *Session) MapClick(at domain.LatLng) bool {
	return s.drawing.Click(at)
}

// MapDoubleClick commits the drawn polygon. It returns false, with no error,
// when there are too few vertices or drawing mode is off.
func (s *Session) MapDoubleClick() (domain.Polygon, bool, error) {
	wasDrawing := s.drawing.IsDrawing()
	p, ok, err := s.drawing.DoubleClick()
	if err != nil {
		s.logger.Error("commit polygon failed", "error", err)
		return domain.Polygon{}, false, err
	}
	if !ok {
		if wasDrawing {
			s.metrics.PolygonRejected.Inc()
			s.logger.Debug("polygon commit ignored", "vertices", len(s.drawing.Vertices()))
		}
		return domain.Polygon{}, false, nil
	}

	s.metrics.PolygonCommits.Inc()
	s.metrics.Regions.Set(float64(s.regions.Len()))
	s.logger.Info("region created", "region_id", p.ID, "vertices", len(p.Vertices))
	s.publish(domain.ChangeEvent{Kind: domain.ChangeRegionCreated, Region: &p, RegionID: p.ID})
	s.publishDrawing()
	return p, true, nil
}

// DrawPreview returns the in-progress outline.
func (s *Session) DrawPreview() draw.Preview { return s.drawing.Preview() }

// Regions returns the stored regions in creation order.
func (s *Session) Regions() []domain.Polygon { return s.regions.List() }

// DeleteRegion removes a region. Absent ids are a no-op.
func (s *Session) DeleteRegion(id string) bool {
	if !s.regions.Remove(id) {
		return false
	}
	s.regionDeleted(id)
	return true
}

// UndoLastRegion removes the most recently created region.
func (s *Session) UndoLastRegion() (domain.Polygon, bool) {
	p, ok := s.regions.RemoveLast()
	if ok {
		s.regionDeleted(p.ID)
	}
	return p, ok
}

func (s *Session) regionDeleted(id string) {
	s.metrics.Regions.Set(float64(s.regions.Len()))
	s.logger.Info("region deleted", "region_id", id)
	s.publish(domain.ChangeEvent{Kind: domain.ChangeRegionDeleted, RegionID: id})
}

// RegionSummary summarizes the selected variable over the filtered points
// inside region id.
func (s *Session) RegionSummary(id string) (region.Summary, bool) {
	p, ok := s.regions.Get(id)
	if !ok {
		return region.Summary{}, false
	}
	return region.Summarize(p, s.FilteredPoints(), s.selected), true
}

// RegionsGeoJSON exports the stored regions as a FeatureCollection.
func (s *Session) RegionsGeoJSON() ([]byte, error) {
	return region.MarshalGeoJSON(s.regions.List())
}

package domain

import "time"

// ChangeKind names a state change observable by display widgets.
type ChangeKind string

const (
	ChangeWindow        ChangeKind = "window_changed"
	ChangeVariable      ChangeKind = "variable_selected"
	ChangeSliderMode    ChangeKind = "slider_mode_changed"
	ChangeDrawingMode   ChangeKind = "drawing_mode_changed"
	ChangeRegionCreated ChangeKind = "region_created"
	ChangeRegionDeleted ChangeKind = "region_deleted"
)

// ChangeEvent describes one shared-state transition. Only the fields relevant to
// Kind are set.
type ChangeEvent struct {
	Kind       ChangeKind  `json:"kind"`
	Window     *TimeWindow `json:"window,omitempty"`
	VariableID string      `json:"variable_id,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Drawing    *bool       `json:"drawing,omitempty"`
	Region     *Polygon    `json:"region,omitempty"`
	RegionID   string      `json:"region_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

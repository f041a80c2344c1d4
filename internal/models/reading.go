package models

import "time"

// DensityReading is one crowd-density sample for an area. Capacity may be
// zero, in which case the area's configured capacity applies.
type DensityReading struct {
	AreaID    string    `json:"area_id"`
	Density   float64   `json:"density"`
	Capacity  float64   `json:"capacity,omitempty"`
	Timestamp time.Time `json:"ts,omitempty"`
}

// AreaSnapshot is the latest known state of one zone, shaped for the
// dashboard zone cards.
type AreaSnapshot struct {
	AreaID      string         `json:"area_id"`
	AreaName    string         `json:"area_name"`
	Density     float64        `json:"density"`
	Capacity    float64        `json:"capacity"`
	Level       ThresholdLevel `json:"level"`
	Color       string         `json:"color"`
	Status      string         `json:"status"`
	LastUpdated time.Time      `json:"last_updated"`
}

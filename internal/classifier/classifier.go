// Package classifier maps density readings onto threshold levels. It is
// pure: any numeric input yields a level and nothing else happens.
package classifier

import "crowd-safety-service/internal/models"

// Bands holds the ratio edges between levels. An edge belongs to the
// higher level (closed lower bound), so a reading sitting exactly on
// WarningRatio already classifies as WARNING. Callers own the values;
// nothing here is hardcoded so operations can tune them per site.
type Bands struct {
	WarningRatio   float64
	CriticalRatio  float64
	EmergencyRatio float64
}

// DefaultBands matches the portal's stock configuration.
func DefaultBands() Bands {
	return Bands{WarningRatio: 0.8, CriticalRatio: 0.9, EmergencyRatio: 1.0}
}

// Classify returns the threshold level for a density value against a
// capacity threshold. A non-positive capacity cannot produce a meaningful
// ratio; it is treated as already over capacity when any crowd is present,
// which errs toward over-alerting rather than under-alerting.
func Classify(density, capacity float64, bands Bands) models.ThresholdLevel {
	if capacity <= 0 {
		if density > 0 {
			return models.LevelEmergency
		}
		return models.LevelNormal
	}

	ratio := density / capacity
	switch {
	case ratio >= bands.EmergencyRatio:
		return models.LevelEmergency
	case ratio >= bands.CriticalRatio:
		return models.LevelCritical
	case ratio >= bands.WarningRatio:
		return models.LevelWarning
	default:
		return models.LevelNormal
	}
}

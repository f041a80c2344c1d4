package models

import "time"

// EmergencyTrigger says whether emergency mode was switched on by an
// operator or by the density pipeline.
type EmergencyTrigger string

const (
	TriggerManual    EmergencyTrigger = "MANUAL"
	TriggerAutomatic EmergencyTrigger = "AUTOMATIC"
)

// ValidTrigger reports whether t is a member of the closed trigger set.
func ValidTrigger(t EmergencyTrigger) bool {
	return t == TriggerManual || t == TriggerAutomatic
}

// EmergencyMode is the process-wide emergency flag. AreaID is empty for a
// site-wide emergency. Exactly one value exists per process; it is mutated
// in place by the emergency manager and never destroyed.
type EmergencyMode struct {
	Active        bool             `json:"active"`
	Trigger       EmergencyTrigger `json:"trigger,omitempty"`
	AreaID        string           `json:"area_id,omitempty"`
	ActivatedBy   string           `json:"activated_by,omitempty"`
	ActivatedAt   *time.Time       `json:"activated_at,omitempty"`
	DeactivatedBy string           `json:"deactivated_by,omitempty"`
	DeactivatedAt *time.Time       `json:"deactivated_at,omitempty"`
}

package models

import "time"

// Alert type tags. High density is the only type the classifier pipeline
// produces today; manual SOS alerts reuse the same record shape.
const (
	AlertTypeHighDensity = "high_density"
	AlertTypeManualSOS   = "manual_sos"
)

// AlertMetadata carries free-form context attached to an alert at creation.
type AlertMetadata struct {
	Location         string   `json:"location,omitempty"`
	AffectedPersons  int      `json:"affected_persons,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	AlternateRoutes  []string `json:"alternate_routes,omitempty"`
}

// AuthorityAcknowledgment records which authority acknowledged an alert.
// It is embedded in its AlertEvent and set exactly once.
type AuthorityAcknowledgment struct {
	AuthorityID    string    `json:"authority_id"`
	AuthorityName  string    `json:"authority_name"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	Notes          string    `json:"notes,omitempty"`
}

// AlertEvent is a single crowd-risk alert. All fields except Acknowledgment
// are immutable once the event is created; a reading that crosses a
// different threshold produces a new event, never an edit.
type AlertEvent struct {
	ID             string                   `json:"id"`
	Timestamp      time.Time                `json:"timestamp"`
	AreaID         string                   `json:"area_id"`
	AreaName       string                   `json:"area_name"`
	Severity       ThresholdLevel           `json:"severity"`
	DensityValue   float64                  `json:"density_value"`
	Threshold      float64                  `json:"threshold"`
	Type           string                   `json:"type"`
	Metadata       AlertMetadata            `json:"metadata"`
	Acknowledgment *AuthorityAcknowledgment `json:"acknowledgment,omitempty"`
}

// Acknowledged reports whether the alert has left the PENDING state.
func (a *AlertEvent) Acknowledged() bool {
	return a.Acknowledgment != nil
}

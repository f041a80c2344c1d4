// Package alertstore is the authoritative holder of alert events. It is
// the only place allowed to set an alert's acknowledgment, and it keeps
// every record for audit: alerts are never deleted.
package alertstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/models"
)

// Store keeps alerts in memory in creation order. Persistence is an
// external collaborator notified after the in-memory write succeeds.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*models.AlertEvent
	events []*models.AlertEvent
}

func New() *Store {
	return &Store{byID: make(map[string]*models.AlertEvent)}
}

// CreateInput holds the immutable fields of a new alert.
type CreateInput struct {
	AreaID       string
	AreaName     string
	Severity     models.ThresholdLevel
	DensityValue float64
	Threshold    float64
	Type         string
	Metadata     models.AlertMetadata
}

// Create appends a new alert with a fresh id and timestamp. It always
// succeeds and never overwrites an existing record.
func (s *Store) Create(in CreateInput) models.AlertEvent {
	event := &models.AlertEvent{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		AreaID:       in.AreaID,
		AreaName:     in.AreaName,
		Severity:     in.Severity,
		DensityValue: in.DensityValue,
		Threshold:    in.Threshold,
		Type:         in.Type,
		Metadata:     in.Metadata,
	}

	s.mu.Lock()
	s.byID[event.ID] = event
	s.events = append(s.events, event)
	s.mu.Unlock()

	return snapshot(event)
}

// Get returns the alert for id or a NotFound error.
func (s *Store) Get(id string) (models.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.byID[id]
	if !ok {
		return models.AlertEvent{}, apperr.NotFoundf("alert %s not found", id)
	}
	return snapshot(event), nil
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	AreaID       string
	MinSeverity  *models.ThresholdLevel
	Acknowledged *bool
}

// List returns matching alerts in creation-time ascending order. The order
// is stable across calls with no intervening writes; dashboards rely on it.
func (s *Store) List(f Filter) []models.AlertEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertEvent, 0, len(s.events))
	for _, event := range s.events {
		if f.AreaID != "" && event.AreaID != f.AreaID {
			continue
		}
		if f.MinSeverity != nil && event.Severity < *f.MinSeverity {
			continue
		}
		if f.Acknowledged != nil && event.Acknowledged() != *f.Acknowledged {
			continue
		}
		out = append(out, snapshot(event))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Acknowledge sets the acknowledgment exactly once. A second attempt gets
// AlreadyProcessed and leaves the original acknowledgment untouched, so a
// retried request can be told apart from a missing alert.
func (s *Store) Acknowledge(id string, ack models.AuthorityAcknowledgment) (models.AlertEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.byID[id]
	if !ok {
		return models.AlertEvent{}, apperr.NotFoundf("alert %s not found", id)
	}
	if event.Acknowledgment != nil {
		return models.AlertEvent{}, apperr.AlreadyProcessedf("alert %s already acknowledged by %s", id, event.Acknowledgment.AuthorityID)
	}

	ackCopy := ack
	if ackCopy.AcknowledgedAt.IsZero() {
		ackCopy.AcknowledgedAt = time.Now()
	}
	event.Acknowledgment = &ackCopy
	return snapshot(event), nil
}

// snapshot copies an event so callers never share mutable state with the
// store. Must be called with at least a read lock held.
func snapshot(event *models.AlertEvent) models.AlertEvent {
	out := *event
	if event.Acknowledgment != nil {
		ack := *event.Acknowledgment
		out.Acknowledgment = &ack
	}
	return out
}

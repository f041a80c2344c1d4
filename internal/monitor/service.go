// Package monitor runs the density ingest pipeline: classify a reading,
// detect level changes per area, raise alerts, and escalate to emergency
// mode when a reading crosses the top band.
package monitor

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"crowd-safety-service/internal/alertstore"
	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/classifier"
	"crowd-safety-service/internal/emergency"
	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/ws"
)

// Auditor persists alert audit rows after the in-memory write committed.
// Implemented by the db package; nil disables auditing.
type Auditor interface {
	RecordAlert(ctx context.Context, alert models.AlertEvent) error
}

// suggestedActions feeds alert metadata per severity, built once and never
// mutated.
var suggestedActions = map[models.ThresholdLevel][]string{
	models.LevelWarning:   {"Increase monitoring frequency", "Station volunteers at entry points"},
	models.LevelCritical:  {"Slow entry flow", "Open alternate routes", "Announce crowd guidance"},
	models.LevelEmergency: {"Halt entry", "Begin staged evacuation", "Dispatch response teams"},
}

var alternateRoutes = map[string][]string{
	"gate": {"East service lane"},
	"hall": {"North corridor", "Courtyard exit"},
	"exit": {"Gate 2 overflow path"},
}

type areaState struct {
	name        string
	capacity    float64
	density     float64
	level       models.ThresholdLevel
	lastUpdated time.Time
	seen        bool
}

// Service owns per-area last-known levels and fans readings out to the
// alert store, the dashboard hub, the emergency manager, and the auditor.
type Service struct {
	store       *alertstore.Store
	emergencies *emergency.Manager
	hub         *ws.Hub
	auditor     Auditor
	logger      *logging.Logger
	bands       classifier.Bands

	mu    sync.RWMutex
	areas map[string]*areaState

	readings chan models.DensityReading
	ctx      context.Context
	cancel   context.CancelFunc
	wg       *sync.WaitGroup
	workers  int
}

// Options carries the tunables main reads from config.
type Options struct {
	Bands      classifier.Bands
	Zones      map[string]float64
	QueueSize  int
	MaxWorkers int
}

func New(store *alertstore.Store, emergencies *emergency.Manager, hub *ws.Hub, auditor Auditor, logger *logging.Logger, opts Options) *Service {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 500
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		store:       store,
		emergencies: emergencies,
		hub:         hub,
		auditor:     auditor,
		logger:      logger,
		bands:       opts.Bands,
		areas:       make(map[string]*areaState, len(opts.Zones)),
		readings:    make(chan models.DensityReading, opts.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		workers:     opts.MaxWorkers,
	}
	for id, capacity := range opts.Zones {
		svc.areas[id] = &areaState{name: displayName(id), capacity: capacity}
	}
	return svc
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the workers; pending queued readings are dropped.
func (s *Service) Stop() {
	s.cancel()
}

// QueueReading enqueues a reading for asynchronous processing (the Kafka
// path). A full queue drops the reading with a log line rather than
// blocking the consumer.
func (s *Service) QueueReading(reading models.DensityReading) {
	select {
	case s.readings <- reading:
	default:
		s.logger.Errorf("Reading queue full, dropping reading for area %s", reading.AreaID)
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Monitor worker %d stopped", id)
			return
		case reading := <-s.readings:
			if _, err := s.Submit(reading); err != nil {
				s.logger.Errorf("Reading for area %s rejected: %v", reading.AreaID, err)
			}
		}
	}
}

// Submit classifies one reading and applies its side effects. It returns
// the assigned level. An alert is created only when the area's level
// changed and the new level is WARNING or above, so a sustained reading at
// one severity does not spam a new alert every poll.
func (s *Service) Submit(reading models.DensityReading) (models.ThresholdLevel, error) {
	if reading.AreaID == "" {
		return models.LevelNormal, apperr.Validationf("area id is required").WithDetail("field", "area_id")
	}
	if reading.Density < 0 {
		return models.LevelNormal, apperr.Validationf("density must not be negative").WithDetail("field", "density")
	}

	s.mu.Lock()
	area, ok := s.areas[reading.AreaID]
	if !ok {
		if reading.Capacity <= 0 {
			s.mu.Unlock()
			return models.LevelNormal, apperr.Validationf("unknown area %q and no capacity supplied", reading.AreaID).WithDetail("field", "area_id")
		}
		// First sight of an ad-hoc area with its own capacity.
		area = &areaState{name: displayName(reading.AreaID), capacity: reading.Capacity}
		s.areas[reading.AreaID] = area
	}

	capacity := area.capacity
	if reading.Capacity > 0 {
		capacity = reading.Capacity
	}

	level := classifier.Classify(reading.Density, capacity, s.bands)
	levelChanged := !area.seen || level != area.level

	area.density = reading.Density
	area.level = level
	area.seen = true
	area.lastUpdated = time.Now()
	areaName := area.name
	s.mu.Unlock()

	if levelChanged && level >= models.LevelWarning {
		s.raiseAlert(reading, areaName, capacity, level)
	}
	if levelChanged && level == models.LevelEmergency {
		s.escalate(reading.AreaID)
	}
	return level, nil
}

func (s *Service) raiseAlert(reading models.DensityReading, areaName string, capacity float64, level models.ThresholdLevel) {
	alert := s.store.Create(alertstore.CreateInput{
		AreaID:       reading.AreaID,
		AreaName:     areaName,
		Severity:     level,
		DensityValue: reading.Density,
		Threshold:    capacity,
		Type:         models.AlertTypeHighDensity,
		Metadata: models.AlertMetadata{
			Location:         areaName,
			AffectedPersons:  int(reading.Density),
			SuggestedActions: suggestedActions[level],
			AlternateRoutes:  alternateRoutes[reading.AreaID],
		},
	})
	s.logger.Infof("Alert %s raised: area=%s level=%s density=%.0f threshold=%.0f",
		alert.ID, alert.AreaID, alert.Severity, alert.DensityValue, alert.Threshold)

	if s.hub != nil {
		s.hub.Broadcast("alert_created", alert)
	}
	if s.auditor != nil {
		if err := s.auditor.RecordAlert(context.Background(), alert); err != nil {
			s.logger.Errorf("Alert audit write failed for %s: %v", alert.ID, err)
		}
	}
}

// escalate turns emergency mode on for the area with an AUTOMATIC trigger.
// This is an internal trusted caller, so it does not pass the HTTP
// permission and rate-limit gates.
func (s *Service) escalate(areaID string) {
	if _, err := s.emergencies.Activate(areaID, models.TriggerAutomatic, "density-monitor"); err != nil {
		s.logger.Errorf("Automatic emergency activation failed for area %s: %v", areaID, err)
		return
	}
	s.logger.Warnf("Emergency mode auto-activated for area %s", areaID)
}

// AreaSnapshots returns the latest zone states for the dashboard, sorted
// by area id for stable output.
func (s *Service) AreaSnapshots() []models.AreaSnapshot {
	s.mu.RLock()
	out := make([]models.AreaSnapshot, 0, len(s.areas))
	for id, area := range s.areas {
		out = append(out, models.AreaSnapshot{
			AreaID:      id,
			AreaName:    area.name,
			Density:     area.density,
			Capacity:    area.capacity,
			Level:       area.level,
			Color:       area.level.Color(),
			Status:      area.level.StatusText(),
			LastUpdated: area.lastUpdated,
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AreaID < out[j].AreaID })
	return out
}

func displayName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

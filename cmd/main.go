package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"crowd-safety-service/internal/alertstore"
	"crowd-safety-service/internal/api"
	"crowd-safety-service/internal/auth"
	"crowd-safety-service/internal/classifier"
	"crowd-safety-service/internal/config"
	"crowd-safety-service/internal/db"
	"crowd-safety-service/internal/emergency"
	"crowd-safety-service/internal/kafka"
	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/monitor"
	"crowd-safety-service/internal/ratelimit"
	"crowd-safety-service/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Audit database is optional; the core runs in memory either way.
	var auditDB *db.DB
	if cfg.DB.DSN != "" {
		auditDB, err = db.New(cfg.DB.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to audit database: %v", err)
			log.Fatalf("Audit database connection failed: %v", err)
		}
		defer auditDB.Close()
	} else {
		logger.Warnf("AUDIT_DB_DSN not set, audit sink disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := alertstore.New()
	hub := ws.NewHub(logger)
	authSvc := auth.New(parsePrincipals(cfg.Auth.Principals, logger))

	manager := emergency.New(func(state models.EmergencyMode) {
		hub.Broadcast("emergency_changed", state)
		if auditDB != nil {
			if err := auditDB.RecordEmergencyTransition(context.Background(), state); err != nil {
				logger.Errorf("Emergency audit write failed: %v", err)
			}
		}
	})

	var auditor monitor.Auditor
	var ackAuditor api.AckAuditor
	if auditDB != nil {
		auditor = auditDB
		ackAuditor = auditDB
	}

	monitorSvc := monitor.New(store, manager, hub, auditor, logger, monitor.Options{
		Bands: classifier.Bands{
			WarningRatio:   cfg.Thresholds.WarningRatio,
			CriticalRatio:  cfg.Thresholds.CriticalRatio,
			EmergencyRatio: cfg.Thresholds.EmergencyRatio,
		},
		Zones:      cfg.Zones,
		QueueSize:  cfg.Monitor.QueueSize,
		MaxWorkers: cfg.Monitor.MaxWorkers,
	})
	var wg sync.WaitGroup
	monitorSvc.Start(&wg)

	limiters := api.Limiters{
		Strict:  ratelimit.New(ratelimit.Profile{Limit: cfg.RateLimit.StrictLimit, Window: cfg.RateLimit.StrictWindow}),
		Default: ratelimit.New(ratelimit.Profile{Limit: cfg.RateLimit.DefaultLimit, Window: cfg.RateLimit.DefaultWindow}),
	}
	limiters.Strict.StartJanitor(ctx, &wg)
	limiters.Default.StartJanitor(ctx, &wg)

	// Kafka ingest is optional: without a broker only HTTP ingest runs.
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(kafka.Config{
			Broker:  cfg.Kafka.Broker,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, monitorSvc, logger)
		consumer.Start(ctx, &wg)
	} else {
		logger.Warnf("KAFKA_BROKER not set, reading ingest is HTTP-only")
	}

	// Start API server
	h := api.NewHandler(store, manager, authSvc, monitorSvc, hub, ackAuditor, logger)
	router := api.NewRouter(h, authSvc, limiters, logger, cfg.API.BasePath)
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	monitorSvc.Stop()
	if consumer != nil {
		consumer.Close()
	}
	wg.Wait()
	logger.Infof("Service stopped")
}

// parsePrincipals reads "id:role:name" triples. Bad entries are logged and
// skipped so one typo cannot keep the service down.
func parsePrincipals(raw string, logger *logging.Logger) []models.Principal {
	if raw == "" {
		return nil
	}
	var out []models.Principal
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			logger.Errorf("Skipping malformed principal entry %q", entry)
			continue
		}
		role := models.Role(parts[1])
		switch role {
		case models.RoleSuperAdmin, models.RoleSafetyAdmin, models.RoleMonitorOnly:
		default:
			logger.Errorf("Skipping principal %q with unknown role %q", parts[0], parts[1])
			continue
		}
		out = append(out, models.Principal{ID: parts[0], Role: role, Name: parts[2]})
	}
	return out
}

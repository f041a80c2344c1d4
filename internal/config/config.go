package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	DB struct {
		// DSN of the audit database. Empty disables the audit sink.
		DSN string
	}
	Thresholds struct {
		WarningRatio   float64
		CriticalRatio  float64
		EmergencyRatio float64
	}
	RateLimit struct {
		StrictLimit   int
		StrictWindow  time.Duration
		DefaultLimit  int
		DefaultWindow time.Duration
	}
	Monitor struct {
		QueueSize  int
		MaxWorkers int
	}
	Auth struct {
		// Principals is the raw "id:role:name" list pushed by the portal,
		// e.g. "root-1:SUPER_ADMIN:Site Director,admin-1:SAFETY_ADMIN:Lead".
		Principals string
	}
	// Zones maps area id to its capacity threshold. Parsed from
	// ZONE_CAPACITIES, e.g. "gate:600,hall:800,exit:400".
	Zones map[string]float64
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	cfg.DB.DSN = os.Getenv("AUDIT_DB_DSN")

	cfg.Thresholds.WarningRatio = envFloat("THRESHOLD_WARNING_RATIO", 0.8)
	cfg.Thresholds.CriticalRatio = envFloat("THRESHOLD_CRITICAL_RATIO", 0.9)
	cfg.Thresholds.EmergencyRatio = envFloat("THRESHOLD_EMERGENCY_RATIO", 1.0)

	cfg.RateLimit.StrictLimit = envInt("RATE_LIMIT_STRICT", 5)
	cfg.RateLimit.StrictWindow = envDuration("RATE_LIMIT_STRICT_WINDOW", 60*time.Second)
	cfg.RateLimit.DefaultLimit = envInt("RATE_LIMIT_DEFAULT", 60)
	cfg.RateLimit.DefaultWindow = envDuration("RATE_LIMIT_DEFAULT_WINDOW", 60*time.Second)

	cfg.Monitor.QueueSize = envInt("QUEUE_SIZE", 500)
	cfg.Monitor.MaxWorkers = envInt("MAX_WORKERS", 4)

	cfg.Auth.Principals = os.Getenv("PRINCIPALS")

	zones, err := parseZones(os.Getenv("ZONE_CAPACITIES"))
	if err != nil {
		return Config{}, err
	}
	cfg.Zones = zones

	// Validate band ordering so a typo cannot invert escalation.
	if !(cfg.Thresholds.WarningRatio < cfg.Thresholds.CriticalRatio &&
		cfg.Thresholds.CriticalRatio < cfg.Thresholds.EmergencyRatio) {
		return Config{}, fmt.Errorf("threshold ratios must be strictly increasing: %v < %v < %v",
			cfg.Thresholds.WarningRatio, cfg.Thresholds.CriticalRatio, cfg.Thresholds.EmergencyRatio)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// parseZones reads "id:capacity" pairs. Stock zones from the portal apply
// when the variable is unset.
func parseZones(raw string) (map[string]float64, error) {
	if raw == "" {
		return map[string]float64{"gate": 600, "hall": 800, "exit": 400}, nil
	}
	zones := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid zone entry %q", pair)
		}
		capacity, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || capacity <= 0 {
			return nil, fmt.Errorf("invalid capacity for zone %q", parts[0])
		}
		zones[parts[0]] = capacity
	}
	return zones, nil
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

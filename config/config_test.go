package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "podtracker",
		Password: "secret",
		Name:     "podtracker",
		SSLMode:  "disable",
	}
	dsn := db.GetDSN()

	expected := "host=localhost port=5432 user=podtracker password=secret dbname=podtracker sslmode=disable"
	if dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestGetDSNCustomValues(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		User:     "admin",
		Password: "p@ss",
		Name:     "mydb",
		SSLMode:  "require",
	}
	dsn := db.GetDSN()

	if !strings.Contains(dsn, "host=db.example.com") {
		t.Errorf("DSN missing host, got: %s", dsn)
	}
	if !strings.Contains(dsn, "port=5433") {
		t.Errorf("DSN missing port, got: %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("DSN missing sslmode, got: %s", dsn)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t,
		"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "REDIS_URL", "CORS_ALLOWED_ORIGINS",
		"SCHEDULER_RELEASE_DELAY_SEC", "SCHEDULER_DRIFT_PERIOD_SEC",
		"MQTT_URL", "MQTT_TOPIC",
	)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "podtracker" {
		t.Errorf("Database.Name = %q, want %q", cfg.Database.Name, "podtracker")
	}
	if cfg.Scheduler.ReleaseDelay != 30*time.Second {
		t.Errorf("ReleaseDelay = %s, want 30s", cfg.Scheduler.ReleaseDelay)
	}
	if cfg.Scheduler.DriftPeriod != 45*time.Second {
		t.Errorf("DriftPeriod = %s, want 45s", cfg.Scheduler.DriftPeriod)
	}
	if cfg.MQTT.URL != "" {
		t.Errorf("MQTT.URL = %q, want empty (bridge disabled)", cfg.MQTT.URL)
	}
	if cfg.MQTT.Topic != "podtracker/sensors/+" {
		t.Errorf("MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "podtracker/sensors/+")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	os.Setenv("SCHEDULER_RELEASE_DELAY_SEC", "5")
	os.Setenv("SCHEDULER_DRIFT_PERIOD_SEC", "7")
	defer clearEnv(t, "SCHEDULER_RELEASE_DELAY_SEC", "SCHEDULER_DRIFT_PERIOD_SEC")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scheduler.ReleaseDelay != 5*time.Second {
		t.Errorf("ReleaseDelay = %s, want 5s", cfg.Scheduler.ReleaseDelay)
	}
	if cfg.Scheduler.DriftPeriod != 7*time.Second {
		t.Errorf("DriftPeriod = %s, want 7s", cfg.Scheduler.DriftPeriod)
	}
}

func TestLoadConfigInvalidInt(t *testing.T) {
	os.Setenv("SERVER_PORT", "not-a-number")
	defer clearEnv(t, "SERVER_PORT")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid SERVER_PORT")
	}
}

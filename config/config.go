package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Scheduler SchedulerConfig
	MQTT      MQTTConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	// URL is a redis:// connection string. Empty disables the cache, and
	// live event fan-out degrades to a no-op.
	URL string
}

type CORSConfig struct {
	AllowedOrigins string
}

type SchedulerConfig struct {
	ReleaseDelay time.Duration
	DriftPeriod  time.Duration
}

type MQTTConfig struct {
	// URL is a tcp:// broker address. Empty disables the sensor bridge.
	URL   string
	Topic string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	releaseDelaySec, err := getIntEnv("SCHEDULER_RELEASE_DELAY_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_RELEASE_DELAY_SEC: %w", err)
	}

	driftPeriodSec, err := getIntEnv("SCHEDULER_DRIFT_PERIOD_SEC", 45)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_DRIFT_PERIOD_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "podtracker"),
			Password: getEnv("DB_PASSWORD", "podtracker_dev_password"),
			Name:     getEnv("DB_NAME", "podtracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Scheduler: SchedulerConfig{
			ReleaseDelay: time.Duration(releaseDelaySec) * time.Second,
			DriftPeriod:  time.Duration(driftPeriodSec) * time.Second,
		},
		MQTT: MQTTConfig{
			URL:   getEnv("MQTT_URL", ""),
			Topic: getEnv("MQTT_TOPIC", "podtracker/sensors/+"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DB PostgresConfig

	LocalBankPath string

	// RedisAddr empty disables the booklet cache.
	RedisAddr       string
	BookletCacheTTL time.Duration

	JWTSecret string

	CalibrationMinResponses int
	CalibrationWorkers      int

	CORSOrigins []string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the lib/pq keyword connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := getDuration("BOOKLET_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	minResponses, err := getPositiveInt("CALIBRATION_MIN_RESPONSES", 50)
	if err != nil {
		return nil, err
	}
	workers, err := getPositiveInt("CALIBRATION_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "dev"),
		DB: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "enem_user"),
			Password: getEnv("DB_PASSWORD", "enem_password"),
			Name:     getEnv("DB_NAME", "enem_prep"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		LocalBankPath:           getEnv("LOCAL_BANK_PATH", "./data/local_bank.db"),
		RedisAddr:               strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		BookletCacheTTL:         ttl,
		JWTSecret:               getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		CalibrationMinResponses: minResponses,
		CalibrationWorkers:      workers,
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "*")),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", key, v, err)
	}
	return d, nil
}

func getPositiveInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s=%q must be a positive integer", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

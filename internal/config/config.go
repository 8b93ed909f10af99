package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds every runtime setting of the API.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Persistence
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DBTimeout     time.Duration

	// Security
	JWTSecret  string
	JWTExpire  time.Duration
	BcryptCost int

	// HTTP
	AllowedOrigins  []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxBodyBytes    int64

	// Optional infrastructure
	RedisAddr    string
	OTLPEndpoint string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	jwtExpire, err := ParseExpiry(getEnv("JWT_EXPIRE", "30d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "homeservices"),
		DBTimeout:     time.Duration(getIntEnv("DB_TIMEOUT_SEC", 5)) * time.Second,

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTExpire:  jwtExpire,
		BcryptCost: getIntEnv("BCRYPT_COST", 12),

		AllowedOrigins:  allowedOrigins(os.Getenv("FRONTEND_URL")),
		RateLimitMax:    getIntEnv("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(getIntEnv("RATE_LIMIT_WINDOW_MIN", 10)) * time.Minute,
		MaxBodyBytes:    int64(getIntEnv("MAX_BODY_BYTES", 1<<20)),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the API cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be set when STORE_DRIVER=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// ParseExpiry accepts Go durations ("720h") and day counts ("30d").
func ParseExpiry(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", v)
	}
	return d, nil
}

func allowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURL != "" {
		origins = append(origins, frontendURL)
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using default %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

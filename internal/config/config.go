package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment variables.
// It is constructed once in main and passed to every component that needs it.
type Config struct {
	Env             string
	ServerPort      string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	JWTSecret       string
	JWTExpiry       time.Duration
	AllowedOrigins  []string
	RateLimitRate   float64
	RateLimitBurst  int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	EmailPattern    string
	SwaggerHost     string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		Env:             getEnv("APP_ENV", "development"),
		ServerPort:      getEnv("SERVER_PORT", "5000"),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/greenmarket?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		JWTExpiry:       getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitRate:   float64(getEnvInt("RATE_LIMIT", 100)),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		EmailPattern:    getEnv("EMAIL_PATTERN", `^[a-zA-Z0-9._%+-]+@(crk\.)?umn\.edu$`),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	ServiceName string
	AppEnv      string
	ServerPort  int
	LogLevel    string

	KVBackend   string
	SQLitePath  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	KafkaBrokers []string

	SessionSecret []byte
	SessionTTL    time.Duration

	OrderSuccessRate float64
	OrderDelay       time.Duration
	FormDelay        time.Duration

	DefaultCurrency string
	CSRFEnabled     bool
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded (%v), using process environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		AppEnv:      strings.ToLower(EnvDefault("APP_ENV", "development")),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		KVBackend:   strings.ToLower(EnvDefault("KV_BACKEND", BackendSQLite)),
		SQLitePath:  EnvDefault("SQLITE_PATH", "file:storefront.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "plants"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionTTL:    time.Duration(EnvIntDefault("SESSION_TTL_HOURS", 24*30)) * time.Hour,

		OrderSuccessRate: EnvFloatDefault("ORDER_SUCCESS_RATE", 0.9),
		OrderDelay:       time.Duration(EnvIntDefault("ORDER_DELAY_MS", 2200)) * time.Millisecond,
		FormDelay:        time.Duration(EnvIntDefault("FORM_DELAY_MS", 1000)) * time.Millisecond,

		DefaultCurrency: EnvDefault("DEFAULT_CURRENCY", "EUR"),
		CSRFEnabled:     EnvBoolDefault("CSRF_ENABLED", false),
	}
}

// Production reports whether secrets must come from the environment.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

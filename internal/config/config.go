package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port     string
	APIKey   string // empty disables the X-API-Key check
	LogLevel string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	// Classifier selects the external sentiment model: "rules", "gemini" or "openai".
	Classifier        string
	OpenAIKey         string
	OpenAIModel       string
	ClassifierRPS     float64
	ClassifierTimeout time.Duration
	LexiconFile       string

	StorageBackend string // "memory", "firestore" or "sql"
	SQLDriver      string // "mysql" or "sqlite"
	SQLDSN         string

	SessionBackend string // "memory" or "redis"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	SweepSchedule    string
	ReminderSchedule string
	TurnWorkers      int

	TraceExporter string
	OTLPEndpoint  string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return def
	}
	return f
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return def
	}
	return d
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

// Load reads .env (if present) and all env vars and builds the config
func Load() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	modeStr := getEnv("VIBE_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port:     getEnv("VIBE_PORT", "8080"),
		APIKey:   getEnv("VIBE_API_KEY", ""),
		LogLevel: getEnv("VIBE_LOG_LEVEL", "info"),

		GCPProjectID: getEnv("VIBE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("VIBE_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("VIBE_MODEL_NAME", "gemini-2.5-flash-lite"),

		Classifier:        getEnv("VIBE_CLASSIFIER", "rules"),
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("VIBE_OPENAI_MODEL", "gpt-4o-mini"),
		ClassifierRPS:     getFloatEnv("VIBE_CLASSIFIER_RPS", 5),
		ClassifierTimeout: getDurationEnv("VIBE_CLASSIFIER_TIMEOUT", 4*time.Second),
		LexiconFile:       getEnv("VIBE_LEXICON_FILE", ""),

		StorageBackend: getEnv("VIBE_STORAGE_BACKEND", "memory"),
		SQLDriver:      getEnv("VIBE_SQL_DRIVER", "mysql"),
		SQLDSN:         getEnv("VIBE_SQL_DSN", ""),

		SessionBackend: getEnv("VIBE_SESSION_BACKEND", "memory"),
		RedisAddr:      getEnv("VIBE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("VIBE_REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("VIBE_REDIS_DB", 0),
		SessionTTL:     getDurationEnv("VIBE_SESSION_TTL", 2*time.Hour),

		KafkaBrokers: splitList(getEnv("VIBE_KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("VIBE_KAFKA_TOPIC", "hr-escalations"),

		SweepSchedule:    getEnv("VIBE_SWEEP_SCHEDULE", "@every 10m"),
		ReminderSchedule: getEnv("VIBE_REMINDER_SCHEDULE", "0 9 * * *"),
		TurnWorkers:      getIntEnv("VIBE_TURN_WORKERS", 8),

		TraceExporter: getEnv("VIBE_TRACE_EXPORTER", "none"),
		OTLPEndpoint:  getEnv("VIBE_OTLP_ENDPOINT", ""),
	}

	if getBoolEnv("VIBE_USE_RULES_ONLY", false) {
		cfg.Classifier = "rules"
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("VIBE_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}

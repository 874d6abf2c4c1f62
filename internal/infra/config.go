package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Job store backends selectable through JOB_STORE.
const (
	JobStoreMemory   = "memory"
	JobStorePGX      = "pgx"
	JobStorePostgres = "postgres"
	JobStoreSQLite   = "sqlite"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DefaultLocale string
	CORSOrigins   []string

	JWTSecret   string
	JWTAudience string

	JobStore    string
	DatabaseURL string
	SQLitePath  string

	IdentityURL     string
	IdentityAnonKey string
	AppScheme       string
	AuthFlowTTL     time.Duration

	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string
	FeedImportURL  string

	PromptProvider string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	OpenAIOrg      string

	GenerationDelayScale float64
	TrainingStep         int
	TrainingInterval     time.Duration
	ModelBaseURL         string
	JobMaxAttempts       int
	JobTimeout           time.Duration
	JobBackoff           time.Duration
	JobMaxBackoff        time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	JobStartsPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          port,
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		CORSOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTAudience: getEnv("JWT_AUDIENCE", "authenticated"),

		JobStore:    strings.ToLower(getEnv("JOB_STORE", JobStoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "studio.db"),

		IdentityURL:     os.Getenv("IDENTITY_URL"),
		IdentityAnonKey: os.Getenv("IDENTITY_ANON_KEY"),
		AppScheme:       getEnv("APP_SCHEME", "myapp"),
		AuthFlowTTL:     getEnvDuration("AUTH_FLOW_TTL", 10*time.Minute),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		FeedImportURL:  os.Getenv("FEED_IMPORT_URL"),

		PromptProvider: strings.ToLower(getEnv("PROMPT_PROVIDER", "static")),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:      os.Getenv("OPENAI_ORG"),

		GenerationDelayScale: getEnvFloat("GENERATION_DELAY_SCALE", 1),
		TrainingStep:         getEnvInt("TRAINING_STEP", 2),
		TrainingInterval:     getEnvDuration("TRAINING_INTERVAL", 500*time.Millisecond),
		ModelBaseURL:         getEnv("MODEL_BASE_URL", "https://api.example.com/v1/models"),
		JobMaxAttempts:       getEnvInt("JOB_MAX_ATTEMPTS", 3),
		JobTimeout:           getEnvDuration("JOB_TIMEOUT", 10*time.Minute),
		JobBackoff:           getEnvDuration("JOB_BACKOFF", time.Second),
		JobMaxBackoff:        getEnvDuration("JOB_MAX_BACKOFF", 30*time.Second),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		JobStartsPerMin:  getEnvInt("JOB_STARTS_PER_MINUTE", 10),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IdentityURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL is required")
	}
	if cfg.IdentityAnonKey == "" {
		return nil, fmt.Errorf("IDENTITY_ANON_KEY is required")
	}

	switch cfg.JobStore {
	case JobStoreMemory, JobStoreSQLite:
	case JobStorePGX, JobStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for JOB_STORE=%s", cfg.JobStore)
		}
	default:
		return nil, fmt.Errorf("JOB_STORE %q is not supported", cfg.JobStore)
	}

	switch cfg.PromptProvider {
	case "static":
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for PROMPT_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("PROMPT_PROVIDER %q is not supported", cfg.PromptProvider)
	}

	if cfg.GenerationDelayScale < 0 {
		return nil, fmt.Errorf("GENERATION_DELAY_SCALE must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings such as "500ms" or "10m".
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

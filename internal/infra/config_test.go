package infra

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("IDENTITY_URL", "https://project.supabase.co")
	t.Setenv("IDENTITY_ANON_KEY", "anon")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")
	t.Setenv("JOB_STORE", "")
	t.Setenv("TRAINING_INTERVAL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Fatalf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
	if cfg.JobStore != JobStoreMemory {
		t.Fatalf("JobStore = %q", cfg.JobStore)
	}
	if cfg.TrainingStep != 2 || cfg.TrainingInterval != 500*time.Millisecond {
		t.Fatalf("training pacing = %d/%s", cfg.TrainingStep, cfg.TrainingInterval)
	}
	if cfg.JobMaxAttempts != 3 || cfg.JobTimeout != 10*time.Minute {
		t.Fatalf("retry policy = %d/%s", cfg.JobMaxAttempts, cfg.JobTimeout)
	}
	if cfg.AppScheme != "myapp" || cfg.JWTAudience != "authenticated" {
		t.Fatalf("auth defaults = %q %q", cfg.AppScheme, cfg.JWTAudience)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:1919/static" {
		t.Fatalf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigParsesDurationsAndLists(t *testing.T) {
	setRequired(t)
	t.Setenv("TRAINING_INTERVAL", "50ms")
	t.Setenv("JOB_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test, ,http://b.test ")
	t.Setenv("GENERATION_DELAY_SCALE", "0.01")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TrainingInterval != 50*time.Millisecond {
		t.Fatalf("TrainingInterval = %s", cfg.TrainingInterval)
	}
	if cfg.JobTimeout != 10*time.Minute {
		t.Fatalf("invalid duration must fall back, got %s", cfg.JobTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("CORSOrigins = %#v", cfg.CORSOrigins)
	}
	if cfg.GenerationDelayScale != 0.01 {
		t.Fatalf("GenerationDelayScale = %v", cfg.GenerationDelayScale)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}, want: "JWT_SECRET"},
		{name: "missing identity url", env: map[string]string{"IDENTITY_URL": ""}, want: "IDENTITY_URL"},
		{name: "postgres without url", env: map[string]string{"JOB_STORE": "postgres", "DATABASE_URL": ""}, want: "DATABASE_URL"},
		{name: "unknown store", env: map[string]string{"JOB_STORE": "redis"}, want: "JOB_STORE"},
		{name: "openai without key", env: map[string]string{"PROMPT_PROVIDER": "openai", "OPENAI_API_KEY": ""}, want: "OPENAI_API_KEY"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("LoadConfig error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

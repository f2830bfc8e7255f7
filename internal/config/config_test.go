package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_INT_VAR_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when environment variable is not a valid integer",
			key:          "TEST_INT_VAR_INVALID",
			defaultValue: 100,
			envValue:     "not_a_number",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "handles negative integers",
			key:          "TEST_INT_VAR_NEGATIVE",
			defaultValue: 100,
			envValue:     "-50",
			shouldSet:    true,
			want:         -50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		shouldSet    bool
		want         time.Duration
	}{
		{
			name:         "parses valid duration",
			key:          "TEST_DUR_VAR",
			defaultValue: time.Minute,
			envValue:     "90s",
			shouldSet:    true,
			want:         90 * time.Second,
		},
		{
			name:         "returns default when unset",
			key:          "TEST_DUR_VAR_MISSING",
			defaultValue: time.Minute,
			envValue:     "",
			shouldSet:    false,
			want:         time.Minute,
		},
		{
			name:         "returns default when invalid",
			key:          "TEST_DUR_VAR_INVALID",
			defaultValue: time.Minute,
			envValue:     "soon",
			shouldSet:    true,
			want:         time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("requires API_KEY", func(t *testing.T) {
		t.Setenv("API_KEY", "")
		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error when API_KEY unset")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("API_KEY", "test-api-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Port != "8080" {
			t.Errorf("Port = %v, want 8080", cfg.Port)
		}
		if cfg.Env != "development" {
			t.Errorf("Env = %v, want development", cfg.Env)
		}
		if cfg.WebhookLogDir != "./logs/webhooks" {
			t.Errorf("WebhookLogDir = %v, want ./logs/webhooks", cfg.WebhookLogDir)
		}
		if cfg.WebhookMemoTTL != 24*time.Hour {
			t.Errorf("WebhookMemoTTL = %v, want 24h", cfg.WebhookMemoTTL)
		}
		if cfg.WebhookSweepInterval != time.Hour {
			t.Errorf("WebhookSweepInterval = %v, want 1h", cfg.WebhookSweepInterval)
		}
		if cfg.WebhookVerifySignature {
			t.Error("WebhookVerifySignature = true, want false by default")
		}
		if cfg.PageCacheSize != 512 {
			t.Errorf("PageCacheSize = %d, want 512", cfg.PageCacheSize)
		}
		if !cfg.MetricsEnabled {
			t.Error("MetricsEnabled = false, want true by default")
		}
	})

	t.Run("production webhook log dir", func(t *testing.T) {
		t.Setenv("API_KEY", "test-api-key")
		t.Setenv("ENV", "production")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.WebhookLogDir != "/var/log/vendora-edge/webhooks" {
			t.Errorf("WebhookLogDir = %v, want /var/log/vendora-edge/webhooks", cfg.WebhookLogDir)
		}
	})

	t.Run("explicit WEBHOOK_LOG_DIR wins over environment default", func(t *testing.T) {
		t.Setenv("API_KEY", "test-api-key")
		t.Setenv("ENV", "production")
		t.Setenv("WEBHOOK_LOG_DIR", "/tmp/hooks")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.WebhookLogDir != "/tmp/hooks" {
			t.Errorf("WebhookLogDir = %v, want /tmp/hooks", cfg.WebhookLogDir)
		}
	})

	t.Run("strict signature mode requires WEBHOOK_SECRET", func(t *testing.T) {
		t.Setenv("API_KEY", "test-api-key")
		t.Setenv("WEBHOOK_VERIFY_SIGNATURE", "true")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error when verification enabled without secret")
		}

		t.Setenv("WEBHOOK_SECRET", "whsec_test")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !cfg.WebhookVerifySignature {
			t.Error("WebhookVerifySignature = false, want true")
		}
	})

	t.Run("validation error when COMMERCE_RATE_LIMIT <= 0", func(t *testing.T) {
		t.Setenv("API_KEY", "test-api-key")
		t.Setenv("COMMERCE_RATE_LIMIT", "0")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for COMMERCE_RATE_LIMIT <= 0")
		}
	})
}

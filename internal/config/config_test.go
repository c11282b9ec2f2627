package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8081",
		DataBackend:        BackendPublished,
		CSVURL:             "https://example.com/pub?output=csv",
		FetchTimeout:       15 * time.Second,
		SeedFile:           "./data/videos.csv",
		GoogleSheetRange:   "Videos!A:E",
		SessionTTL:         30 * time.Minute,
		SessionMax:         1000,
		GalleryWaitTimeout: 5 * time.Second,
		RateLimitRPM:       120,
		Timezone:           "UTC",
		LogLevel:           "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid published backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			mutate: func(c *Config) {
				c.DataBackend = BackendMemory
				c.CSVURL = ""
			},
			wantErr: false,
		},
		{
			name: "valid sheets backend config with inline credentials",
			mutate: func(c *Config) {
				c.DataBackend = BackendSheets
				c.GoogleSpreadsheetID = "abc123"
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sqlite" },
			wantErr:     true,
			errorString: "invalid data backend 'sqlite': must be one of [published sheets memory]",
		},
		{
			name:        "published backend missing CSV URL",
			mutate:      func(c *Config) { c.CSVURL = "" },
			wantErr:     true,
			errorString: "CSV URL cannot be empty when using published backend",
		},
		{
			name:        "published backend bad CSV URL scheme",
			mutate:      func(c *Config) { c.CSVURL = "ftp://example.com/videos.csv" },
			wantErr:     true,
			errorString: "invalid CSV URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name:        "published backend CSV URL without host",
			mutate:      func(c *Config) { c.CSVURL = "https:///videos.csv" },
			wantErr:     true,
			errorString: "missing host",
		},
		{
			name:        "negative fetch timeout",
			mutate:      func(c *Config) { c.FetchTimeout = -time.Second },
			wantErr:     true,
			errorString: "invalid fetch timeout",
		},
		{
			name: "sheets backend missing spreadsheet ID",
			mutate: func(c *Config) {
				c.DataBackend = BackendSheets
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required when using sheets backend",
		},
		{
			name: "sheets backend missing range",
			mutate: func(c *Config) {
				c.DataBackend = BackendSheets
				c.GoogleSpreadsheetID = "abc123"
				c.GoogleSheetRange = ""
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr:     true,
			errorString: "Google sheet range is required when using sheets backend",
		},
		{
			name: "sheets backend missing service account file on disk",
			mutate: func(c *Config) {
				c.DataBackend = BackendSheets
				c.GoogleSpreadsheetID = "abc123"
				c.GoogleServiceAccountFile = "/nonexistent/sa.json"
			},
			wantErr:     true,
			errorString: "Google service account file does not exist: /nonexistent/sa.json",
		},
		{
			name: "memory backend missing seed file",
			mutate: func(c *Config) {
				c.DataBackend = BackendMemory
				c.SeedFile = ""
			},
			wantErr:     true,
			errorString: "seed file path cannot be empty when using memory backend",
		},
		{
			name:        "session TTL too short",
			mutate:      func(c *Config) { c.SessionTTL = 10 * time.Second },
			wantErr:     true,
			errorString: "invalid session TTL 10s: must be at least 1 minute",
		},
		{
			name:        "session TTL too long",
			mutate:      func(c *Config) { c.SessionTTL = 48 * time.Hour },
			wantErr:     true,
			errorString: "invalid session TTL 48h0m0s: must be at most 24 hours",
		},
		{
			name:        "session max zero",
			mutate:      func(c *Config) { c.SessionMax = 0 },
			wantErr:     true,
			errorString: "invalid session max 0: must be at least 1",
		},
		{
			name:        "gallery wait timeout zero",
			mutate:      func(c *Config) { c.GalleryWaitTimeout = 0 },
			wantErr:     true,
			errorString: "invalid gallery wait timeout 0s: must be positive",
		},
		{
			name:        "gallery wait timeout too long",
			mutate:      func(c *Config) { c.GalleryWaitTimeout = 2 * time.Minute },
			wantErr:     true,
			errorString: "invalid gallery wait timeout 2m0s: must be at most 1 minute",
		},
		{
			name:        "rate limit zero",
			mutate:      func(c *Config) { c.RateLimitRPM = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1 request per minute",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "bad trusted proxy",
			mutate:      func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "not-a-cidr"} },
			wantErr:     true,
			errorString: "invalid trusted proxy CIDR 'not-a-cidr'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errorString != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %q", err, tt.errorString)
				}
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.SessionMax = 0
	cfg.RateLimitRPM = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Config.Validate() expected error")
	}
	for _, want := range []string{"invalid port", "invalid session max", "invalid rate limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Config.Validate() error = %v, want it to mention %q", err, want)
		}
	}
}

func TestConfig_ValidateWithFiles(t *testing.T) {
	tempDir := t.TempDir()
	saFile := filepath.Join(tempDir, "service-account.json")
	if err := os.WriteFile(saFile, []byte(`{"type":"service_account"}`), 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	t.Run("sheets backend with existing service account file", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		cfg := validConfig()
		cfg.DataBackend = BackendSheets
		cfg.GoogleSpreadsheetID = "abc123"
		cfg.GoogleServiceAccountFile = saFile

		if err := cfg.Validate(); err != nil {
			t.Errorf("Config.Validate() unexpected error = %v", err)
		}
	})

	t.Run("sheets backend falls back to application default credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", saFile)
		cfg := validConfig()
		cfg.DataBackend = BackendSheets
		cfg.GoogleSpreadsheetID = "abc123"

		if err := cfg.Validate(); err != nil {
			t.Errorf("Config.Validate() unexpected error = %v", err)
		}
	})

	t.Run("sheets backend without any credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		cfg := validConfig()
		cfg.DataBackend = BackendSheets
		cfg.GoogleSpreadsheetID = "abc123"

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "must be provided for sheets backend") {
			t.Errorf("Config.Validate() error = %v, want missing credentials", err)
		}
	})
}

var configEnvVars = []string{
	"PORT", "TRUSTED_PROXIES", "DATA_BACKEND", "CSV_URL", "FETCH_TIMEOUT", "SEED_FILE",
	"GOOGLE_SPREADSHEET_ID", "GOOGLE_SHEET_RANGE", "GOOGLE_SERVICE_ACCOUNT_JSON",
	"GOOGLE_SERVICE_ACCOUNT_FILE", "SESSION_TTL", "SESSION_MAX", "GALLERY_WAIT_TIMEOUT",
	"RATE_LIMIT_RPM", "TIMEZONE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		clearEnv(t)

		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != BackendPublished {
			t.Errorf("Load() DataBackend = %v, want published", cfg.DataBackend)
		}
		if cfg.CSVURL != DefaultCSVURL {
			t.Errorf("Load() CSVURL = %v, want default sheet URL", cfg.CSVURL)
		}
		if cfg.FetchTimeout != 15*time.Second {
			t.Errorf("Load() FetchTimeout = %v, want 15s", cfg.FetchTimeout)
		}
		if cfg.SeedFile != "./data/videos.csv" {
			t.Errorf("Load() SeedFile = %v, want ./data/videos.csv", cfg.SeedFile)
		}
		if cfg.GoogleSheetRange != "Videos!A:E" {
			t.Errorf("Load() GoogleSheetRange = %v, want Videos!A:E", cfg.GoogleSheetRange)
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Errorf("Load() SessionTTL = %v, want 30m", cfg.SessionTTL)
		}
		if cfg.SessionMax != 1000 {
			t.Errorf("Load() SessionMax = %v, want 1000", cfg.SessionMax)
		}
		if cfg.GalleryWaitTimeout != 5*time.Second {
			t.Errorf("Load() GalleryWaitTimeout = %v, want 5s", cfg.GalleryWaitTimeout)
		}
		if cfg.RateLimitRPM != 120 {
			t.Errorf("Load() RateLimitRPM = %v, want 120", cfg.RateLimitRPM)
		}
		if cfg.Timezone != "Europe/Madrid" {
			t.Errorf("Load() Timezone = %v, want Europe/Madrid", cfg.Timezone)
		}
		if len(cfg.TrustedProxies) != 0 {
			t.Errorf("Load() TrustedProxies = %v, want none", cfg.TrustedProxies)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("custom environment values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("SEED_FILE", "/tmp/videos.csv")
		t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,192.168.0.0/16")
		t.Setenv("SESSION_TTL", "10m")
		t.Setenv("SESSION_MAX", "50")
		t.Setenv("RATE_LIMIT_RPM", "30")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != BackendMemory {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.SeedFile != "/tmp/videos.csv" {
			t.Errorf("Load() SeedFile = %v, want /tmp/videos.csv", cfg.SeedFile)
		}
		if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "192.168.0.0/16" {
			t.Errorf("Load() TrustedProxies = %v, want two entries", cfg.TrustedProxies)
		}
		if cfg.SessionTTL != 10*time.Minute {
			t.Errorf("Load() SessionTTL = %v, want 10m", cfg.SessionTTL)
		}
		if cfg.SessionMax != 50 {
			t.Errorf("Load() SessionMax = %v, want 50", cfg.SessionMax)
		}
		if cfg.RateLimitRPM != 30 {
			t.Errorf("Load() RateLimitRPM = %v, want 30", cfg.RateLimitRPM)
		}
		if cfg.Level() != slog.LevelDebug {
			t.Errorf("Load() Level() = %v, want debug", cfg.Level())
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SESSION_MAX", "invalid")
		t.Setenv("SESSION_TTL", "invalid")

		cfg := Load()

		if cfg.SessionMax != 1000 {
			t.Errorf("Load() SessionMax = %v, want 1000 (default for invalid input)", cfg.SessionMax)
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Errorf("Load() SessionTTL = %v, want 30m (default for invalid input)", cfg.SessionTTL)
		}
	})
}

func TestConfig_Location(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Europe/Madrid"
	if got := cfg.Location().String(); got != "Europe/Madrid" {
		t.Errorf("Location() = %v, want Europe/Madrid", got)
	}

	cfg.Timezone = "Mars/Olympus"
	if cfg.Location() != time.UTC {
		t.Errorf("Location() with unknown zone = %v, want UTC", cfg.Location())
	}
}

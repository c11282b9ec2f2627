package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"swingtube/internal/log"
)

// DefaultCSVURL is the published gallery sheet.
const DefaultCSVURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSk4ZnURJYtb9-fFek4YesRUa30TMZIlh5Kh_VgWcW-mFRfi4cBTgZnECp4ORAia44CVDw9g5L7CFJ1/pub?gid=0&single=true&output=csv"

// Data backends.
const (
	BackendPublished = "published"
	BackendSheets    = "sheets"
	BackendMemory    = "memory"
)

var validBackends = []string{BackendPublished, BackendSheets, BackendMemory}

type Config struct {
	// HTTP Server
	Port           string
	TrustedProxies []string

	// Backend selection
	DataBackend string

	// Published CSV feed
	CSVURL       string
	FetchTimeout time.Duration

	// Memory backend
	SeedFile string

	// Google Sheets API
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Gallery sessions
	SessionTTL         time.Duration
	SessionMax         int
	GalleryWaitTimeout time.Duration

	// Rate limiting
	RateLimitRPM int

	// Calendar used for the default month/year
	Timezone string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		DataBackend: getEnv("DATA_BACKEND", BackendPublished),

		CSVURL:       getEnv("CSV_URL", DefaultCSVURL),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		SeedFile: getEnv("SEED_FILE", "./data/videos.csv"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "Videos!A:E"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMax:         getEnvInt("SESSION_MAX", 1000),
		GalleryWaitTimeout: getEnvDuration("GALLERY_WAIT_TIMEOUT", 5*time.Second),

		RateLimitRPM: getEnvInt("RATE_LIMIT_RPM", 120),

		Timezone: getEnv("TIMEZONE", "Europe/Madrid"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy CIDR '%s'", cidr))
		}
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendPublished:
		if c.CSVURL == "" {
			errors = append(errors, "CSV URL cannot be empty when using published backend")
		} else if parsedURL, err := url.Parse(c.CSVURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid CSV URL '%s': %v", c.CSVURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid CSV URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		} else if parsedURL.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid CSV URL '%s': missing host", c.CSVURL))
		}
		if c.FetchTimeout < 0 {
			errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must not be negative", c.FetchTimeout))
		}

	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google sheet range is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}

	case BackendMemory:
		if c.SeedFile == "" {
			errors = append(errors, "seed file path cannot be empty when using memory backend")
		}
	}

	// Validate sessions
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 24 hours", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.GalleryWaitTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid gallery wait timeout %v: must be positive", c.GalleryWaitTimeout))
	} else if c.GalleryWaitTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid gallery wait timeout %v: must be at most 1 minute", c.GalleryWaitTimeout))
	}

	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	return log.ParseLevel(c.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

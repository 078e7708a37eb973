// Package config reads the process configuration from the environment.
// Load never fails; Validate reports every problem at once so a bad
// deployment shows all its mistakes in one log line.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port           string
	AllowedOrigins []string

	// Storage backend: "sqlite" or "memory"
	DataBackend  string
	SQLiteDBPath string

	// Receipt scan queue; empty AMQPURL means scans run inline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// External services
	GeminiAPIKey  string
	GeminiModel   string
	RatesAPIToken string
	RatesBaseURL  string

	// Google Sheets trip reports (optional)
	SheetsSpreadsheetID   string
	SheetsSheetName       string
	SheetsCredentialsJSON string
	SheetsCredentialsFile string

	// User preferences file
	SettingsPath string

	// Worker
	ScanStopTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/viaggi.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "viaggi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "scan_receipts"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", ""),
		RatesAPIToken: getEnv("RATES_API_TOKEN", ""),
		RatesBaseURL:  getEnv("RATES_BASE_URL", ""),

		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:       getEnv("SHEETS_SHEET_NAME", "Trips"),
		SheetsCredentialsJSON: getEnv("SHEETS_CREDENTIALS_JSON", ""),
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),

		SettingsPath: getEnv("SETTINGS_PATH", "./data/settings.json"),

		ScanStopTimeout: getEnvDuration("SCAN_STOP_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be 'sqlite' or 'memory'", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsSpreadsheetID != "" {
		if c.SheetsCredentialsJSON == "" && c.SheetsCredentialsFile == "" {
			errs = append(errs, "either SHEETS_CREDENTIALS_JSON or SHEETS_CREDENTIALS_FILE must be provided for sheets export")
		}
		if c.SheetsCredentialsFile != "" {
			if _, err := os.Stat(c.SheetsCredentialsFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("sheets credentials file does not exist: %s", c.SheetsCredentialsFile))
			}
		}
	}

	if c.ScanStopTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid scan stop timeout %v: must be at least 1 second", c.ScanStopTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// SheetsEnabled reports whether trip-report publishing is configured.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

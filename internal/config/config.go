package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Files
	MediaRoot    string
	DataDir      string
	CSVDelimiter string
	RatesFile    string

	// Aggregation
	OutlierCeiling float64
	MinCityShare   float64
	SkillLimit     int
	SkillsByYear   bool

	// AMQP (optional; empty URL runs processing in-process)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Report export
	ExportBackend       string
	ExportXLSXPath      string
	GoogleSpreadsheetID string

	// hh.ru latest vacancies
	HHAPIURL   string
	HHQuery    string
	HHCacheTTL time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/vacstat.db"),

		MediaRoot:    getEnv("MEDIA_ROOT", "./media"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		CSVDelimiter: getEnv("CSV_DELIMITER", ","),
		RatesFile:    getEnv("RATES_FILE", ""),

		OutlierCeiling: getEnvFloat("OUTLIER_CEILING", 10_000_000),
		MinCityShare:   getEnvFloat("MIN_CITY_SHARE", 1),
		SkillLimit:     getEnvInt("SKILL_LIMIT", 20),
		SkillsByYear:   getEnvBool("SKILLS_BY_YEAR", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "vacstat"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "process_files"),

		ExportBackend:       getEnv("EXPORT_BACKEND", "none"),
		ExportXLSXPath:      getEnv("EXPORT_XLSX_PATH", "./data/report.xlsx"),
		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),

		HHAPIURL:   getEnv("HH_API_URL", "https://api.hh.ru"),
		HHQuery:    getEnv("HH_QUERY", "php"),
		HHCacheTTL: getEnvDuration("HH_CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.MediaRoot == "" {
		errors = append(errors, "media root cannot be empty")
	}

	if utf8.RuneCountInString(c.CSVDelimiter) != 1 || c.CSVDelimiter == "\n" || c.CSVDelimiter == "\"" {
		errors = append(errors, fmt.Sprintf("invalid CSV delimiter %q: must be a single character other than quote or newline", c.CSVDelimiter))
	}

	if c.RatesFile != "" {
		if _, err := os.Stat(c.RatesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rates file does not exist: %s", c.RatesFile))
		}
	}

	if c.OutlierCeiling < 0 {
		errors = append(errors, fmt.Sprintf("invalid outlier ceiling %v: must not be negative", c.OutlierCeiling))
	}
	if c.MinCityShare < 0 || c.MinCityShare > 100 {
		errors = append(errors, fmt.Sprintf("invalid minimum city share %v: must be between 0 and 100", c.MinCityShare))
	}
	if c.SkillLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid skill limit %d: must be at least 1", c.SkillLimit))
	} else if c.SkillLimit > 1000 {
		errors = append(errors, fmt.Sprintf("invalid skill limit %d: must be at most 1000", c.SkillLimit))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validBackends := []string{"none", "memory", "xlsx", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.ExportBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid export backend '%s': must be one of %v", c.ExportBackend, validBackends))
	}
	if c.ExportBackend == "xlsx" && c.ExportXLSXPath == "" {
		errors = append(errors, "XLSX export path is required when using xlsx export backend")
	}
	if c.ExportBackend == "sheets" && c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets export backend")
	}

	if c.HHAPIURL != "" {
		if parsedURL, err := url.Parse(c.HHAPIURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid hh.ru API URL '%s': %v", c.HHAPIURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid hh.ru API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}
	if c.HHCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid hh.ru cache TTL %v: must not be negative", c.HHCacheTTL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

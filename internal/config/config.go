package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "accounting/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Logging: debug, info, warn or error
	LogLevel string

	// AMQP; an empty URL disables event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Monthly reset
	ResetCheckInterval time.Duration

	// Wishlist import. At most one source may be set.
	WishlistFeedURL         string
	WishlistFile            string
	WishlistFetchTimeout    time.Duration
	WishlistRefreshInterval time.Duration

	// Google Sheets reset archive
	GoogleSpreadsheetID    string
	GoogleArchiveSheetName string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/accounting.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "accounting"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_resets"),

		ResetCheckInterval: getEnvDuration("RESET_CHECK_INTERVAL", time.Hour),

		WishlistFeedURL:         getEnv("WISHLIST_FEED_URL", ""),
		WishlistFile:            getEnv("WISHLIST_FILE", ""),
		WishlistFetchTimeout:    getEnvDuration("WISHLIST_FETCH_TIMEOUT", 30*time.Second),
		WishlistRefreshInterval: getEnvDuration("WISHLIST_REFRESH_INTERVAL", 0),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleArchiveSheetName: getEnv("GOOGLE_ARCHIVE_SHEET_NAME", "Archive"),
	}
}

// AMQPEnabled reports whether ledger events should be published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// WishlistEnabled reports whether a wishlist source is configured.
func (c *Config) WishlistEnabled() bool {
	return c.WishlistFeedURL != "" || c.WishlistFile != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
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

	if c.ResetCheckInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reset check interval %v: must be at least 1 minute", c.ResetCheckInterval))
	} else if c.ResetCheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reset check interval %v: must be at most 24 hours", c.ResetCheckInterval))
	}

	if c.WishlistFeedURL != "" && c.WishlistFile != "" {
		errors = append(errors, "WISHLIST_FEED_URL and WISHLIST_FILE are mutually exclusive")
	}
	if c.WishlistFeedURL != "" {
		if parsedURL, err := url.Parse(c.WishlistFeedURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid wishlist feed URL '%s': %v", c.WishlistFeedURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid wishlist feed URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}
	if c.WishlistFile != "" {
		if _, err := os.Stat(c.WishlistFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("wishlist file does not exist: %s", c.WishlistFile))
		}
	}
	if c.WishlistFetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid wishlist fetch timeout %v: must be at least 1 second", c.WishlistFetchTimeout))
	} else if c.WishlistFetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid wishlist fetch timeout %v: must be at most 5 minutes", c.WishlistFetchTimeout))
	}
	if c.WishlistRefreshInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid wishlist refresh interval %v: must not be negative", c.WishlistRefreshInterval))
	} else if c.WishlistRefreshInterval > 0 && c.WishlistRefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid wishlist refresh interval %v: must be 0 or at least 1 minute", c.WishlistRefreshInterval))
	}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	Storage StorageConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	Port        string
	// PaymentDelay simulates payment processing at checkout
	PaymentDelay time.Duration
}

// CatalogConfig holds remote catalog (Airtable) configuration
type CatalogConfig struct {
	BaseURL      string
	APIKey       string
	BaseID       string
	TableID      string
	FetchTimeout time.Duration
	PassTimeout  time.Duration
	Debounce     time.Duration
}

// StorageConfig holds the local durable store configuration
type StorageConfig struct {
	Path string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist in production
		fmt.Println("No .env file found")
	}

	config := &Config{
		App: AppConfig{
			Environment:  getEnv("APP_ENV", "development"),
			Port:         getEnv("APP_PORT", "8080"),
			PaymentDelay: getDuration("CHECKOUT_PAYMENT_DELAY", 2*time.Second),
		},
		Catalog: CatalogConfig{
			BaseURL:      getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
			APIKey:       getEnv("AIRTABLE_API_KEY", ""),
			BaseID:       getEnv("AIRTABLE_BASE_ID", ""),
			TableID:      getEnv("AIRTABLE_TABLE_ID", "tblQQrvrTG4kVnIzz"),
			FetchTimeout: getDuration("CATALOG_FETCH_TIMEOUT", 10*time.Second),
			PassTimeout:  getDuration("CATALOG_PASS_TIMEOUT", 15*time.Second),
			Debounce:     getDuration("CART_REFRESH_DEBOUNCE", 100*time.Millisecond),
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_PATH", "storefront.db"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getDuration gets a duration environment variable, accepting either a
// Go duration string or a plain millisecond count
func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

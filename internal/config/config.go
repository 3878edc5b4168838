package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported document store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Backend BackendConfig
	CORS    CORSConfig
	Log     LogConfig
	Display DisplayConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// StoreConfig selects and configures the document store.
// MongoDB is the production store; SQLite is an embedded store for local runs.
type StoreConfig struct {
	Driver   string
	MongoURI string
	MongoDB  string
	Path     string
	Timeout  time.Duration
}

// BackendConfig points at the external project-finance model service.
// SensitivityConfigFile is the backend's sensitivity configuration on the shared disk.
type BackendConfig struct {
	URL                   string
	Timeout               time.Duration
	SensitivityConfigFile string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// DisplayConfig holds presentation defaults returned to the UI.
type DisplayConfig struct {
	CurrencyUnit       string
	PreferredCurveName string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	storeTimeout, err := getDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	backendTimeout, err := getDuration("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			MongoURI: os.Getenv("MONGODB_URI"),
			MongoDB:  getEnv("MONGODB_DB", "renew_assets"),
			Path:     getEnv("DB_PATH", "./data/dashboard.db"),
			Timeout:  storeTimeout,
		},
		Backend: BackendConfig{
			URL:                   strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:10000"), "/"),
			Timeout:               backendTimeout,
			SensitivityConfigFile: getEnv("SENSITIVITY_CONFIG_FILE", DefaultSensitivityConfigFile),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Display: DisplayConfig{
			CurrencyUnit:       getEnv("CURRENCY_UNIT", DefaultCurrencyUnit),
			PreferredCurveName: getEnv("PREFERRED_CURVE_NAME", DefaultPreferredCurveName),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultSensitivityConfigFile assumes the model backend is checked out next to this service.
const DefaultSensitivityConfigFile = "../backend-renew/config/sensitivity_config.json"

// Presentation defaults.
const (
	DefaultCurrencyUnit       = "$M"
	DefaultPreferredCurveName = "AC Nov 2024"
)

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER is mongo")
		}
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("DB_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

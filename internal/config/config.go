package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the environment configuration.
var Module = fx.Provide(Load)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	DBPath string

	OFFBaseURL   string
	OFFUserAgent string
	OFFTimeout   time.Duration
	OFFSSLVerify bool
	OFFCABundle  string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "offcache"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		DBPath:       getenv("OFF_CACHE_DB", filepath.Join("data", "off_cache.sqlite")),
		OFFBaseURL:   strings.TrimRight(getenv("OFF_BASE_URL", "https://world.openfoodfacts.org"), "/"),
		OFFUserAgent: getenv("OFF_USER_AGENT", "offcache/0.1 (contact: reuse@openfoodfacts.org)"),
		OFFTimeout:   time.Duration(getenvInt("OFF_TIMEOUT_S", 30)) * time.Second,
		OFFSSLVerify: getenvBool("OFF_SSL_VERIFY", true),
		OFFCABundle:  strings.TrimSpace(getenv("OFF_CA_BUNDLE", "")),
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no":
		return false
	case "1", "true", "yes":
		return true
	default:
		return fallback
	}
}

package config

import (
	"os"
	"strconv"
)

// GidxCredentials holds environment-scoped credentials for the GIDX API.
// They are resolved once at startup from the configured mode.
type GidxCredentials struct {
	APIKey         string
	MerchantID     string
	ProductTypeID  string
	DeviceTypeID   string
	ActivityTypeID string
}

// GidxConfig holds everything needed to talk to the GIDX service.
type GidxConfig struct {
	// Mode selects which credential set is active: "sandbox" or "live".
	Mode        string
	BaseURI     string
	CallbackURL string
	Sandbox     GidxCredentials
	Live        GidxCredentials
}

// Credentials returns the credential set for the active mode.
func (g GidxConfig) Credentials() GidxCredentials {
	if g.Mode == "live" {
		return g.Live
	}
	return g.Sandbox
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	LockWaitMs  int
	LockTTLSec  int
	Gidx        GidxConfig
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LockWaitMs:  getEnvInt("LOCK_WAIT_MS", 5000),
		LockTTLSec:  getEnvInt("LOCK_TTL_SEC", 30),
		Gidx: GidxConfig{
			Mode:        getEnv("GIDX_MODE", "sandbox"),
			BaseURI:     getEnv("GIDX_BASE_URI", "https://api.gidx-service.in"),
			CallbackURL: getEnv("GIDX_CALLBACK_URL", "https://api.example.com/api/tsevo/callback"),
			Sandbox: GidxCredentials{
				APIKey:         os.Getenv("GIDX_SANDBOX_API_KEY"),
				MerchantID:     os.Getenv("GIDX_SANDBOX_MERCHANT_ID"),
				ProductTypeID:  os.Getenv("GIDX_PRODUCT_TYPE_ID"),
				DeviceTypeID:   os.Getenv("GIDX_DEVICE_TYPE_ID"),
				ActivityTypeID: os.Getenv("GIDX_ACTIVITY_TYPE_ID"),
			},
			Live: GidxCredentials{
				APIKey:         os.Getenv("GIDX_LIVE_API_KEY"),
				MerchantID:     os.Getenv("GIDX_LIVE_MERCHANT_ID"),
				ProductTypeID:  os.Getenv("GIDX_PRODUCT_TYPE_ID"),
				DeviceTypeID:   os.Getenv("GIDX_DEVICE_TYPE_ID"),
				ActivityTypeID: os.Getenv("GIDX_ACTIVITY_TYPE_ID"),
			},
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

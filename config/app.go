package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// Remote commerce platform
	PlatformBaseURL string
	PlatformToken   string // fallback when a merchant row carries no credential
	PlatformTimeout time.Duration

	// Order pickup rules
	PickupLeadTime time.Duration // merchant prep time before the first offered slot
	PickupHorizon  time.Duration // max ahead a pickup may be scheduled
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:         GetEnv("APP_NAME", "posbridge"),
			Port:            os.Getenv("PORT"),
			Env:             os.Getenv("APP_ENV"),
			Debug:           os.Getenv("DEBUG") == "true",
			PlatformBaseURL: GetEnv("PLATFORM_BASE_URL", "https://connect.platform.example"),
			PlatformToken:   os.Getenv("PLATFORM_ACCESS_TOKEN"),
			PlatformTimeout: envSeconds("PLATFORM_TIMEOUT_SECONDS", 30*time.Second),
			PickupLeadTime:  envMinutes("PICKUP_LEAD_MINUTES", 20*time.Minute),
			PickupHorizon:   envHours("PICKUP_HORIZON_HOURS", 7*24*time.Hour),
		}
	})
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envSeconds(key string, def time.Duration) time.Duration {
	if n, ok := envInt(key); ok {
		return time.Duration(n) * time.Second
	}
	return def
}

func envMinutes(key string, def time.Duration) time.Duration {
	if n, ok := envInt(key); ok {
		return time.Duration(n) * time.Minute
	}
	return def
}

func envHours(key string, def time.Duration) time.Duration {
	if n, ok := envInt(key); ok {
		return time.Duration(n) * time.Hour
	}
	return def
}

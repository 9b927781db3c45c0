package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	YouTube   YouTubeConfig
	Gemini    GeminiConfig
	Vision    VisionConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type YouTubeConfig struct {
	APIKey string `envconfig:"YOUTUBE_API_KEY" required:"true"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

// Vision credentials are resolved ambiently through
// GOOGLE_APPLICATION_CREDENTIALS; only the policy knob lives here.
type VisionConfig struct {
	SafetyThreshold string `envconfig:"IMAGE_SAFETY_THRESHOLD" default:"POSSIBLE"`
}

type CacheConfig struct {
	TTLDays int `envconfig:"CACHE_TTL_DAYS" default:"7"`
	// BackendURL selects the shared Redis backend when set (redis:// URL).
	// Empty or unreachable falls back to the in-process cache.
	BackendURL string `envconfig:"CACHE_BACKEND_URL"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

type RateLimitConfig struct {
	GlobalDailyLimit int `envconfig:"GLOBAL_DAILY_LIMIT" default:"150"`
	ClientDailyLimit int `envconfig:"CLIENT_DAILY_LIMIT" default:"8"`
	// Timezone names the location whose civil date bounds the daily window.
	Timezone string `envconfig:"RATE_LIMIT_TIMEZONE" default:"UTC"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Cache.TTLDays <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_DAYS must be positive, got %d", cfg.Cache.TTLDays)
	}
	if cfg.RateLimit.GlobalDailyLimit <= 0 {
		return nil, fmt.Errorf("GLOBAL_DAILY_LIMIT must be positive, got %d", cfg.RateLimit.GlobalDailyLimit)
	}
	if _, err := time.LoadLocation(cfg.RateLimit.Timezone); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_TIMEZONE %q: %w", cfg.RateLimit.Timezone, err)
	}
	return &cfg, nil
}

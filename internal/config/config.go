package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by storage.driver.
const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	CORSOrigins            string
	LogLevel               string
	ProgressDebug          bool
	StorageDriver          string
	UploadDir              string
	UploadPublicPath       string
	UploadMaxBytes         int64
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	StatsCacheTTL          time.Duration
	RateLimitMax           int
	RateLimitWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUWORLD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduWorld API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("progress.debug", false)
	v.SetDefault("storage.driver", StorageDriverLocal)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.public_path", "/uploads")
	v.SetDefault("upload.max_mb", 100)
	v.SetDefault("cloudinary.folder", "eduworld/units")
	v.SetDefault("stats.cache_ttl", "1m")
	v.SetDefault("ratelimit.max", 60)
	v.SetDefault("ratelimit.window", "1m")

	ttl, err := parseDuration(v.GetString("stats.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("ratelimit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	maxMB := v.GetInt64("upload.max_mb")
	if maxMB <= 0 {
		maxMB = 100
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CORSOrigins:            v.GetString("cors.origins"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		ProgressDebug:          v.GetBool("progress.debug"),
		StorageDriver:          strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		UploadDir:              v.GetString("upload.dir"),
		UploadPublicPath:       "/" + strings.Trim(v.GetString("upload.public_path"), "/"),
		UploadMaxBytes:         maxMB << 20,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		StatsCacheTTL:          ttl,
		RateLimitMax:           v.GetInt("ratelimit.max"),
		RateLimitWindow:        window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverCloudinary:
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return Config{}, fmt.Errorf("cloudinary credentials are required when storage.driver is cloudinary")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 60
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

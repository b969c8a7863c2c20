package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server configuration
	Environment string `yaml:"environment"`

	// Redis configuration
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// PubNub configuration
	PubNubPublishKey   string `yaml:"pubnub_publish_key"`
	PubNubSubscribeKey string `yaml:"pubnub_subscribe_key"`
	PubNubSecretKey    string `yaml:"pubnub_secret_key"`

	// Token configuration
	JWTAccessSecret  string        `yaml:"jwt_access_secret"`
	JWTRefreshSecret string        `yaml:"jwt_refresh_secret"`
	AccessTokenTTL   time.Duration `yaml:"-"`
	RefreshTokenTTL  time.Duration `yaml:"-"`
	SessionCookie    string        `yaml:"session_cookie"`

	// Password reset configuration
	ResetOTPLength int           `yaml:"reset_otp_length"`
	ResetOTPTTL    time.Duration `yaml:"-"`

	// Booking configuration
	BookingLockTimeout time.Duration `yaml:"-"`

	// Rate limiting
	RateLimitWindow   time.Duration `yaml:"-"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`

	// Monitoring
	EnableMetrics bool `yaml:"enable_metrics"`
}

func LoadConfig() *Config {
	cfg := &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Tokens
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", "dev-access-secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret"),
		AccessTokenTTL:   getEnvAsDuration("ACCESS_TOKEN_TTL", "15m"),
		RefreshTokenTTL:  getEnvAsDuration("REFRESH_TOKEN_TTL", "168h"),
		SessionCookie:    getEnv("SESSION_COOKIE", "eventbook_session"),

		// Password reset
		ResetOTPLength: getEnvAsInt("RESET_OTP_LENGTH", 6),
		ResetOTPTTL:    getEnvAsDuration("RESET_OTP_TTL", "10m"),

		// Booking
		BookingLockTimeout: getEnvAsDuration("BOOKING_LOCK_TIMEOUT", "5s"),

		// Rate limiting
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 30),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	// An optional YAML file overrides the env-derived values. Durations
	// stay env-only ("15m" style strings do not decode into time.Duration).
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Printf("config: failed to apply %s: %v", path, err)
		}
	}

	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Features  FeatureConfig
	OTP       OTPConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Slots     SlotConfig
	Jobs      JobConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Port     string
	Env      string
	Debug    bool
	Timezone string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// FeatureConfig toggles the relaxed development behaviour of the API.
type FeatureConfig struct {
	PhoneVerificationEnabled bool
	UseMockServices          bool
	AutoApproveDocuments     bool
	AllowEmailAuth           bool
	ShowDevBanner            bool
	MockOTPCode              string
}

type OTPConfig struct {
	Length      int
	Expiry      time.Duration
	MaxAttempts int
	ResetExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

type SlotConfig struct {
	HoldTTL  time.Duration
	CacheTTL time.Duration
}

type JobConfig struct {
	Enabled            bool
	ReminderInterval   time.Duration
	TokenPurgeInterval time.Duration
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Location returns the clinic time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "DOME Care API")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_TIMEZONE", "Asia/Damascus")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "domecare")
	v.SetDefault("DB_NAME", "domecare")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "30m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "720h")

	v.SetDefault("PHONE_VERIFICATION_ENABLED", false)
	v.SetDefault("USE_MOCK_SERVICES", true)
	v.SetDefault("AUTO_APPROVE_DOCUMENTS", true)
	v.SetDefault("ALLOW_EMAIL_AUTH", true)
	v.SetDefault("SHOW_DEV_BANNER", true)
	v.SetDefault("MOCK_OTP_CODE", "123456")

	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_EXPIRY", "10m")
	v.SetDefault("OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("PASSWORD_RESET_EXPIRY", "1h")

	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("SLOT_HOLD_TTL", "10s")
	v.SetDefault("SLOT_CACHE_TTL", "10m")

	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("REMINDER_INTERVAL", "1h")
	v.SetDefault("TOKEN_PURGE_INTERVAL", "30m")
}

// LoadConfig reads settings from the given .env file (if present) and the
// process environment. Environment variables take precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, err
			}
		}
	}

	config := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Version:  v.GetString("APP_VERSION"),
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			Debug:    v.GetBool("APP_DEBUG"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr(v, "JWT_ACCESS_EXPIRY", 30*time.Minute),
			RefreshExpiry: durationOr(v, "JWT_REFRESH_EXPIRY", 30*24*time.Hour),
		},
		Features: FeatureConfig{
			PhoneVerificationEnabled: v.GetBool("PHONE_VERIFICATION_ENABLED"),
			UseMockServices:          v.GetBool("USE_MOCK_SERVICES"),
			AutoApproveDocuments:     v.GetBool("AUTO_APPROVE_DOCUMENTS"),
			AllowEmailAuth:           v.GetBool("ALLOW_EMAIL_AUTH"),
			ShowDevBanner:            v.GetBool("SHOW_DEV_BANNER"),
			MockOTPCode:              v.GetString("MOCK_OTP_CODE"),
		},
		OTP: OTPConfig{
			Length:      v.GetInt("OTP_LENGTH"),
			Expiry:      durationOr(v, "OTP_EXPIRY", 10*time.Minute),
			MaxAttempts: v.GetInt("OTP_MAX_ATTEMPTS"),
			ResetExpiry: durationOr(v, "PASSWORD_RESET_EXPIRY", time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Limit:          v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:         durationOr(v, "RATE_LIMIT_WINDOW", time.Minute),
			TrustedProxies: splitList(v.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
		Slots: SlotConfig{
			HoldTTL:  durationOr(v, "SLOT_HOLD_TTL", 10*time.Second),
			CacheTTL: durationOr(v, "SLOT_CACHE_TTL", 10*time.Minute),
		},
		Jobs: JobConfig{
			Enabled:            v.GetBool("JOBS_ENABLED"),
			ReminderInterval:   durationOr(v, "REMINDER_INTERVAL", time.Hour),
			TokenPurgeInterval: durationOr(v, "TOKEN_PURGE_INTERVAL", 30*time.Minute),
		},
	}

	if config.JWT.Secret == "" {
		if config.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		config.JWT.Secret = "dev-secret-change-me"
	}

	return config, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

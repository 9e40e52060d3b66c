package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration values
type Config struct {
	Port    string `koanf:"port" validate:"required,numeric"`
	SiteURL string `koanf:"site_url"`
	GinMode string `koanf:"gin_mode" validate:"oneof=debug release test"`

	// Rate limiting
	RateLimitWindowMS    int `koanf:"rate_limit_window_ms" validate:"gt=0"`
	RateLimitMaxRequests int `koanf:"rate_limit_max_requests" validate:"gt=0"`

	RateStatsRedisAddr     string `koanf:"rate_stats_redis_addr"`
	RateStatsRedisPassword string `koanf:"rate_stats_redis_password"`
	RateStatsRedisDB       int    `koanf:"rate_stats_redis_db" validate:"gte=0"`
	RateStatsPrefix        string `koanf:"rate_stats_prefix"`
	RateStatsTTLSeconds    int    `koanf:"rate_stats_ttl_seconds" validate:"gte=0"`

	// Airtable
	AirtableAPIKey            string  `koanf:"airtable_api_key"`
	AirtableBaseID            string  `koanf:"airtable_base_id"`
	AirtableAPIURL            string  `koanf:"airtable_api_url" validate:"required,url"`
	AirtableCampTable         string  `koanf:"airtable_camp_table" validate:"required"`
	AirtableBusinessTable     string  `koanf:"airtable_business_table" validate:"required"`
	AirtableRequestsPerSecond float64 `koanf:"airtable_requests_per_second" validate:"gt=0"`

	// Notification email
	EmailProvider         string `koanf:"email_provider"`
	ResendAPIKey          string `koanf:"resend_api_key"`
	ResendAPIURL          string `koanf:"resend_api_url" validate:"required,url"`
	NotificationEmailTo   string `koanf:"notification_email_to"`
	NotificationEmailFrom string `koanf:"notification_email_from"`

	OutboundTimeoutMS  int    `koanf:"outbound_timeout_ms" validate:"gt=0"`
	MaxBodyBytes       int64  `koanf:"max_body_bytes" validate:"gt=0"`
	StaticDir          string `koanf:"static_dir"`
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	ServiceName string `koanf:"service_name"`
	LogLevel    string `koanf:"log_level"`
	LogPretty   bool   `koanf:"log_pretty"`
}

// Default returns the configuration used when no environment overrides are present.
func Default() *Config {
	return &Config{
		Port:                      "3000",
		SiteURL:                   "https://shorehockeyacademy.com",
		GinMode:                   "release",
		RateLimitWindowMS:         10 * 60 * 1000,
		RateLimitMaxRequests:      8,
		RateStatsPrefix:           "ratelimit:stats",
		RateStatsTTLSeconds:       24 * 60 * 60,
		AirtableAPIURL:            "https://api.airtable.com",
		AirtableCampTable:         "Camp Leads",
		AirtableBusinessTable:     "Business Leads",
		AirtableRequestsPerSecond: 5,
		EmailProvider:             "resend",
		ResendAPIURL:              "https://api.resend.com",
		OutboundTimeoutMS:         10000,
		MaxBodyBytes:              250 * 1024,
		CORSAllowedOrigins:        "*",
		ServiceName:               "shore-hockey",
		LogLevel:                  "info",
	}
}

// LoadConfig reads configuration from environment variables on top of Default.
func LoadConfig() (*Config, error) {
	return load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}))
}

func load(provider koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.normalize()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.AirtableAPIKey = strings.TrimSpace(c.AirtableAPIKey)
	c.AirtableBaseID = strings.TrimSpace(c.AirtableBaseID)
	c.ResendAPIKey = strings.TrimSpace(c.ResendAPIKey)
	c.NotificationEmailTo = strings.TrimSpace(c.NotificationEmailTo)
	c.NotificationEmailFrom = strings.TrimSpace(c.NotificationEmailFrom)
	c.EmailProvider = strings.ToLower(strings.TrimSpace(c.EmailProvider))
	if c.EmailProvider == "" {
		c.EmailProvider = "resend"
	}
	c.AirtableAPIURL = strings.TrimRight(c.AirtableAPIURL, "/")
	c.ResendAPIURL = strings.TrimRight(c.ResendAPIURL, "/")
}

// RateLimitWindow is the sliding window length.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// OutboundTimeout bounds every call to Airtable and Resend.
func (c *Config) OutboundTimeout() time.Duration {
	return time.Duration(c.OutboundTimeoutMS) * time.Millisecond
}

func (c *Config) RateStatsTTL() time.Duration {
	return time.Duration(c.RateStatsTTLSeconds) * time.Second
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AirtableConfigured reports whether both Airtable credentials are present.
func (c *Config) AirtableConfigured() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != ""
}

/**
 * @description
 * This package handles the configuration management for the vendor service. It uses
 * the Viper library to read settings from environment variables or an optional .env
 * file, providing a single place where defaults and aliases are resolved.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingSessionSecret is returned when no signing secret is configured for sessions.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be configured")

const defaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Config holds all the configuration variables for the vendor service.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	DBAutoMigrate           bool   `mapstructure:"DB_AUTO_MIGRATE"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	SessionRevocationPrefix string `mapstructure:"SESSION_REVOCATION_PREFIX"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	VendorEventsExchange    string `mapstructure:"VENDOR_EVENTS_EXCHANGE"`
	GoogleClientID          string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleJWKSURL           string `mapstructure:"GOOGLE_JWKS_URL"`
	SessionSecret           string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours         int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionCookieSecure     bool   `mapstructure:"SESSION_COOKIE_SECURE"`
	AllowHeaderFallback     bool   `mapstructure:"AUTH_ALLOW_HEADER_FALLBACK"`
	CORSAllowedOrigins      string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// SessionTTL returns the configured session lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into a clean list.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LoadConfig reads configuration from environment variables and an optional .env
// file located in path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("SESSION_REVOCATION_PREFIX", "vendor:revoked_session")
	viper.SetDefault("VENDOR_EVENTS_EXCHANGE", "vendor.events")
	viper.SetDefault("GOOGLE_JWKS_URL", defaultGoogleJWKSURL)
	viper.SetDefault("SESSION_TTL_HOURS", 720)
	viper.SetDefault("SESSION_COOKIE_SECURE", true)
	viper.SetDefault("AUTH_ALLOW_HEADER_FALLBACK", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("DB_AUTO_MIGRATE")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("SESSION_REVOCATION_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("VENDOR_EVENTS_EXCHANGE")
	_ = viper.BindEnv("GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID", "AUTH_GOOGLE_ID")
	_ = viper.BindEnv("GOOGLE_JWKS_URL")
	_ = viper.BindEnv("SESSION_SECRET", "SESSION_SECRET", "NEXTAUTH_SECRET")
	_ = viper.BindEnv("SESSION_TTL_HOURS")
	_ = viper.BindEnv("SESSION_COOKIE_SECURE")
	_ = viper.BindEnv("AUTH_ALLOW_HEADER_FALLBACK")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.SessionSecret = strings.TrimSpace(config.SessionSecret)
	config.GoogleClientID = strings.TrimSpace(config.GoogleClientID)
	config.RedisURL = strings.TrimSpace(config.RedisURL)

	config.SessionRevocationPrefix = strings.TrimSpace(config.SessionRevocationPrefix)
	if config.SessionRevocationPrefix == "" {
		config.SessionRevocationPrefix = "vendor:revoked_session"
	}
	config.VendorEventsExchange = strings.TrimSpace(config.VendorEventsExchange)
	if config.VendorEventsExchange == "" {
		config.VendorEventsExchange = "vendor.events"
	}
	if strings.TrimSpace(config.GoogleJWKSURL) == "" {
		config.GoogleJWKSURL = defaultGoogleJWKSURL
	}
	if config.SessionTTLHours <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive session ttl configured; using default\" ttl_hours=%d", config.SessionTTLHours)
		config.SessionTTLHours = 720
	}

	if config.SessionSecret == "" {
		err = ErrMissingSessionSecret
		return
	}

	return
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/decline/pkg/middleware"
)

const (
	EnvPortalBasePath             = "DECLINE_PORTAL_BASE_PATH"
	EnvPortalPublicURL            = "DECLINE_PORTAL_PUBLIC_URL"
	EnvPortalIntentParam          = "DECLINE_PORTAL_INTENT_PARAM"
	EnvPortalEmbedParam           = "DECLINE_PORTAL_EMBED_PARAM"
	EnvPortalSessionTTL           = "DECLINE_PORTAL_SESSION_TTL"
	EnvPortalNotificationDuration = "DECLINE_PORTAL_NOTIFICATION_DURATION"
	EnvPortalRateLimit            = "DECLINE_PORTAL_RATE_LIMIT"
	EnvPortalRateBurst            = "DECLINE_PORTAL_RATE_BURST"
	EnvPortalSecureCookies        = "DECLINE_PORTAL_SECURE_COOKIES"
)

var portalCORSEnv = &middleware.CORSEnv{
	Enabled:          "DECLINE_PORTAL_CORS_ENABLED",
	Origins:          "DECLINE_PORTAL_CORS_ORIGINS",
	AllowedMethods:   "DECLINE_PORTAL_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DECLINE_PORTAL_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DECLINE_PORTAL_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DECLINE_PORTAL_CORS_MAX_AGE",
}

// PortalConfig holds settings for the recipient-facing signing pages.
type PortalConfig struct {
	BasePath             string  `toml:"base_path"`
	PublicURL            string  `toml:"public_url"`
	IntentParam          string  `toml:"intent_param"`
	EmbedParam           string  `toml:"embed_param"`
	SessionTTL           string  `toml:"session_ttl"`
	NotificationDuration string  `toml:"notification_duration"`
	RateLimit            float64 `toml:"rate_limit"`
	RateBurst            int     `toml:"rate_burst"`
	SecureCookies        bool    `toml:"secure_cookies"`

	CORS middleware.CORSConfig `toml:"cors"`
}

func (c *PortalConfig) SessionTTLDuration() time.Duration {
	return parseDuration(c.SessionTTL)
}

func (c *PortalConfig) NotificationDurationValue() time.Duration {
	return parseDuration(c.NotificationDuration)
}

// AbsoluteURL joins a portal path onto PublicURL.
func (c *PortalConfig) AbsoluteURL(path string) string {
	return strings.TrimSuffix(c.PublicURL, "/") + path
}

// Finalize applies defaults, environment variable overrides, and validation
// for the portal and its nested CORS policy.
func (c *PortalConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(portalCORSEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. SecureCookies always applies.
func (c *PortalConfig) Merge(overlay *PortalConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.IntentParam != "" {
		c.IntentParam = overlay.IntentParam
	}
	if overlay.EmbedParam != "" {
		c.EmbedParam = overlay.EmbedParam
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.NotificationDuration != "" {
		c.NotificationDuration = overlay.NotificationDuration
	}
	if overlay.RateLimit > 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst > 0 {
		c.RateBurst = overlay.RateBurst
	}
	c.SecureCookies = overlay.SecureCookies
	c.CORS.Merge(&overlay.CORS)
}

func (c *PortalConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/sign"
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:8080"
	}
	if c.IntentParam == "" {
		c.IntentParam = "reject"
	}
	if c.EmbedParam == "" {
		c.EmbedParam = "embed"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "30m"
	}
	if c.NotificationDuration == "" {
		c.NotificationDuration = "5s"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 1
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
}

func (c *PortalConfig) loadEnv() {
	if v := os.Getenv(EnvPortalBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvPortalPublicURL); v != "" {
		c.PublicURL = v
	}
	if v := os.Getenv(EnvPortalIntentParam); v != "" {
		c.IntentParam = v
	}
	if v := os.Getenv(EnvPortalEmbedParam); v != "" {
		c.EmbedParam = v
	}
	if v := os.Getenv(EnvPortalSessionTTL); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv(EnvPortalNotificationDuration); v != "" {
		c.NotificationDuration = v
	}
	if v := os.Getenv(EnvPortalRateLimit); v != "" {
		if limit, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = limit
		}
	}
	if v := os.Getenv(EnvPortalRateBurst); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			c.RateBurst = burst
		}
	}
	if v := os.Getenv(EnvPortalSecureCookies); v != "" {
		if secure, err := strconv.ParseBool(v); err == nil {
			c.SecureCookies = secure
		}
	}
}

func (c *PortalConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("base_path must be a single-level path: %s", c.BasePath)
	}
	if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid public_url: %s", c.PublicURL)
	}
	if d, err := time.ParseDuration(c.SessionTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_ttl: %s", c.SessionTTL)
	}
	if d, err := time.ParseDuration(c.NotificationDuration); err != nil || d <= 0 {
		return fmt.Errorf("invalid notification_duration: %s", c.NotificationDuration)
	}
	return nil
}

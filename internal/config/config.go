package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FirebaseConfig holds the Firebase Admin SDK settings shared by the API server and the CLI.
type FirebaseConfig struct {
	ProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	CredentialsFile       string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	CredentialsJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StorageBucket         string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	WebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`
}

// Config holds all configuration for the Daily Whisker API server.
type Config struct {
	FirebaseConfig `mapstructure:",squash"`

	Port           string `mapstructure:"PORT"`
	GinMode        string `mapstructure:"GIN_MODE"`
	ClientURL      string `mapstructure:"CLIENT_URL"`
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// BridgeJWTSecret verifies tokens minted by the OAuth bridge. Empty disables bridge sessions.
	BridgeJWTSecret string `mapstructure:"BRIDGE_JWT_SECRET"`

	RotationWindow time.Duration `mapstructure:"CAT_ROTATION_WINDOW"`
	// Timezone is the IANA location used for calendar-based bookmark filters.
	Timezone string `mapstructure:"TIMEZONE"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CatCacheTTL   time.Duration `mapstructure:"CAT_CACHE_TTL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	ShareMaxBytes int64 `mapstructure:"SHARE_MAX_BYTES"`
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BridgeConfig holds configuration for the Pawssword OAuth bridge.
type BridgeConfig struct {
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	PublicURL   string `mapstructure:"BRIDGE_PUBLIC_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`

	JWTSecret string        `mapstructure:"BRIDGE_JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"BRIDGE_TOKEN_TTL"`
	// StateHashKey signs the OAuth state cookie. A random key is generated at startup when empty.
	StateHashKey string `mapstructure:"BRIDGE_STATE_HASH_KEY"`
}

// ProxyConfig holds configuration for the CORS image proxy.
type ProxyConfig struct {
	Port           string        `mapstructure:"PORT"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	Timeout        time.Duration `mapstructure:"PROXY_TIMEOUT"`
	RateLimitRPS   float64       `mapstructure:"PROXY_RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"PROXY_RATE_LIMIT_BURST"`
	TrustedProxies string        `mapstructure:"TRUSTED_PROXIES"`
}

// CLIConfig holds configuration for whiskerctl.
type CLIConfig struct {
	FirebaseConfig `mapstructure:",squash"`

	CatAPIBaseURL string `mapstructure:"CAT_API_BASE_URL"`
	CatAPIKey     string `mapstructure:"CAT_API_KEY"`

	// Redis is optional; when set, seeding invalidates the API's cached cat id list.
	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

// newViper loads .env outside release mode and returns an env-backed viper instance.
func newViper() *viper.Viper {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		// A missing .env file is normal in containers.
		_ = godotenv.Load()
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// SplitList splits a comma-separated env value, dropping blanks. It returns nil for an empty value.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func bindAll(v *viper.Viper, keys ...string) {
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

var firebaseKeys = []string{
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_STORAGE_BUCKET",
	"FIREBASE_WEB_API_KEY",
}

func validateFirebase(cfg FirebaseConfig) error {
	if cfg.ProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	return nil
}

// LoadConfig loads the API server configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := newViper()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CAT_ROTATION_WINDOW", "24h")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CAT_CACHE_TTL", "1h")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("MAIL_FROM", "no-reply@dailywhisker.app")
	v.SetDefault("SHARE_MAX_BYTES", 5<<20)

	bindAll(v, firebaseKeys...)
	bindAll(v, "PORT", "GIN_MODE", "CLIENT_URL", "TRUSTED_PROXIES", "BRIDGE_JWT_SECRET",
		"CAT_ROTATION_WINDOW", "TIMEZONE",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "CAT_CACHE_TTL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "MAIL_FROM",
		"SHARE_MAX_BYTES")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := validateFirebase(cfg.FirebaseConfig); err != nil {
		return nil, err
	}
	if cfg.RotationWindow <= 0 {
		return nil, errors.New("CAT_ROTATION_WINDOW must be positive")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, errors.New("TIMEZONE is not a valid IANA location: " + err.Error())
	}
	if cfg.ShareMaxBytes <= 0 {
		return nil, errors.New("SHARE_MAX_BYTES must be positive")
	}

	return &cfg, nil
}

// LoadBridgeConfig loads the OAuth bridge configuration.
func LoadBridgeConfig() (*BridgeConfig, error) {
	v := newViper()

	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("BRIDGE_PUBLIC_URL", "http://localhost:3000")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("BRIDGE_TOKEN_TTL", "1h")

	bindAll(v, "PORT", "GIN_MODE", "TRUSTED_PROXIES", "BRIDGE_PUBLIC_URL", "FRONTEND_URL",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET",
		"BRIDGE_JWT_SECRET", "BRIDGE_TOKEN_TTL", "BRIDGE_STATE_HASH_KEY")

	var cfg BridgeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal bridge config: " + err.Error())
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("BRIDGE_JWT_SECRET is required")
	}
	if cfg.GoogleClientID == "" && cfg.GitHubClientID == "" {
		return nil, errors.New("at least one of GOOGLE_CLIENT_ID or GITHUB_CLIENT_ID is required")
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret == "" {
		return nil, errors.New("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret == "" {
		return nil, errors.New("GITHUB_CLIENT_SECRET is required when GITHUB_CLIENT_ID is set")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("BRIDGE_TOKEN_TTL must be positive")
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	return &cfg, nil
}

// LoadProxyConfig loads the CORS proxy configuration.
func LoadProxyConfig() (*ProxyConfig, error) {
	v := newViper()

	v.SetDefault("PORT", "3001")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PROXY_TIMEOUT", "15s")
	v.SetDefault("PROXY_RATE_LIMIT_RPS", 5.0)
	v.SetDefault("PROXY_RATE_LIMIT_BURST", 10)

	bindAll(v, "PORT", "GIN_MODE", "TRUSTED_PROXIES", "PROXY_TIMEOUT", "PROXY_RATE_LIMIT_RPS", "PROXY_RATE_LIMIT_BURST")

	var cfg ProxyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal proxy config: " + err.Error())
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("PROXY_TIMEOUT must be positive")
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, errors.New("PROXY_RATE_LIMIT_RPS must be positive")
	}
	return &cfg, nil
}

// LoadCLIConfig loads the configuration used by whiskerctl.
func LoadCLIConfig() (*CLIConfig, error) {
	v := newViper()

	v.SetDefault("CAT_API_BASE_URL", "https://api.thecatapi.com")

	v.SetDefault("REDIS_DB", 0)

	bindAll(v, firebaseKeys...)
	bindAll(v, "CAT_API_BASE_URL", "CAT_API_KEY", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB")

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal cli config: " + err.Error())
	}
	if err := validateFirebase(cfg.FirebaseConfig); err != nil {
		return nil, err
	}
	return &cfg, nil
}

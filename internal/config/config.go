package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"strings"
	"time"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"development"`

	ProxyListenAddress   string   `default:"127.0.0.1:3001" split_words:"true"`
	ProxyMountPrefix     string   `default:"/api" split_words:"true"`
	ProxyAllowedOrigins  []string `default:"http://localhost:5173,https://localhost:5173" split_words:"true"`
	ProxyWrapInvalidJSON bool     `default:"false" split_words:"true"`

	PortalListenAddress  string   `default:"127.0.0.1:3002" split_words:"true"`
	PortalAllowedOrigins []string `split_words:"true"`

	UpstreamBaseURL   string        `default:"https://api.involve.asia" split_words:"true"`
	UpstreamTimeout   time.Duration `default:"30s" split_words:"true"`
	UpstreamUserAgent string        `default:"Mozilla/5.0 (compatible; InvolveAsia-Proxy/1.0)" split_words:"true"`

	ClientMode              string `default:"direct" split_words:"true"`
	ClientBaseURL           string `split_words:"true"`
	ClientGatewayCredential string `split_words:"true"`

	APIKey    string `split_words:"true"`
	APISecret string `split_words:"true"`

	HistoryRetention time.Duration `default:"24h" split_words:"true"`
	TracingEnabled   bool          `default:"false" split_words:"true"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("dp", config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.EqualFold(config.Environment, "production")
}

// Mode resolves the configured upstream client authorization mode
func (config *Config) Mode() (upstream.Mode, error) {
	return upstream.ParseMode(config.ClientMode, config.ClientGatewayCredential)
}

// EffectiveClientBaseURL returns the base URL the upstream client talks to.
// Without an explicit client base URL the client talks to the upstream API directly.
func (config *Config) EffectiveClientBaseURL() string {
	if config.ClientBaseURL != "" {
		return config.ClientBaseURL
	}
	return config.UpstreamBaseURL
}

// EffectivePortalAllowedOrigins returns the CORS allow-list of the portal API, falling back to the proxy's one
func (config *Config) EffectivePortalAllowedOrigins() []string {
	if len(config.PortalAllowedOrigins) > 0 {
		return config.PortalAllowedOrigins
	}
	return config.ProxyAllowedOrigins
}

func (config *Config) validate() error {
	if _, err := config.Mode(); err != nil {
		return err
	}
	if !strings.HasPrefix(config.ProxyMountPrefix, "/") {
		return fmt.Errorf("the proxy mount prefix must start with '/' (got '%s')", config.ProxyMountPrefix)
	}
	config.ProxyMountPrefix = strings.TrimSuffix(config.ProxyMountPrefix, "/")
	if config.ProxyMountPrefix == "" {
		return fmt.Errorf("the proxy mount prefix must not be the root path")
	}
	if config.UpstreamTimeout <= 0 {
		return fmt.Errorf("the upstream timeout must be positive (got %s)", config.UpstreamTimeout)
	}
	return nil
}

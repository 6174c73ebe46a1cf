// Package config loads and validates blog server configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BuildVersion is stamped at link time with
// -ldflags "-X github.com/JakeFAU/binary-blog/internal/config.BuildVersion=...".
var BuildVersion = "dev"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Site      SiteConfig      `mapstructure:"site"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// SiteConfig holds the values every compiled page is stamped with.
type SiteConfig struct {
	Title        string            `mapstructure:"title"`
	Author       string            `mapstructure:"author"`
	AuthorLinks  map[string]string `mapstructure:"author_links"`
	ExternalURL  string            `mapstructure:"external_url"`
	BuildVersion string            `mapstructure:"build_version"`
	DocumentName string            `mapstructure:"document_name"`
}

// AuthorLinkNames returns the author link names in lexical order.
func (s SiteConfig) AuthorLinkNames() []string {
	names := make([]string, 0, len(s.AuthorLinks))
	for name := range s.AuthorLinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CacheConfig sets the client cache lifetime of served resources.
type CacheConfig struct {
	MaxAgeSeconds int `mapstructure:"max_age_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelemetryConfig toggles OpenTelemetry request tracing.
type TelemetryConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	ServiceName    string `mapstructure:"service_name"`
}

// ExportConfig sets the default destination of the export command.
type ExportConfig struct {
	Dest string `mapstructure:"dest"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms hand the listen port over in PORT.
	if err := v.BindEnv("server.port", "BLOG_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("site.title", "Binary Blog")
	v.SetDefault("site.author", "Ben Meier")
	v.SetDefault("site.author_links", map[string]string{"github": "https://github.com/astromechza"})
	v.SetDefault("site.external_url", "http://localhost:8080")
	v.SetDefault("site.build_version", BuildVersion)
	v.SetDefault("site.document_name", "content.md")
	v.SetDefault("cache.max_age_seconds", 300)
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.service_name", "binary-blog")
	v.SetDefault("export.dest", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.read_header_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Cache.MaxAgeSeconds <= 0 {
		return fmt.Errorf("cache.max_age_seconds must be > 0")
	}
	if strings.TrimSpace(c.Site.Title) == "" {
		return fmt.Errorf("site.title must be set")
	}
	u, err := url.Parse(c.Site.ExternalURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.external_url must be an absolute http(s) url, got %q", c.Site.ExternalURL)
	}
	if c.Site.DocumentName == "" || strings.Contains(c.Site.DocumentName, "/") {
		return fmt.Errorf("site.document_name must be a plain file name, got %q", c.Site.DocumentName)
	}
	if c.Site.BuildVersion == "" {
		return fmt.Errorf("site.build_version must be set")
	}
	if c.Telemetry.TracingEnabled && c.Telemetry.ServiceName == "" {
		return fmt.Errorf("telemetry.service_name must be set when tracing is enabled")
	}
	return nil
}

// Package config loads the swaggerpage command configuration from a YAML
// file, .env files, SWAGGERPAGE_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/swaggerpage"
	"github.com/vitalvas/swaggerpage/mux"
	"github.com/vitalvas/swaggerpage/muxhandlers"
	"github.com/vitalvas/swaggerpage/swagger"
)

const (
	// EnvPrefix is prepended to every environment key, with dots replaced
	// by underscores: SWAGGERPAGE_PAGE_TITLE sets page.title.
	EnvPrefix = "SWAGGERPAGE"

	// ValidatorNone disables the viewer's online validator.
	ValidatorNone = "none"
)

// ErrInvalid is matched by every validation error returned by Load.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete command configuration.
type Config struct {
	Listen string `mapstructure:"listen"`

	// H2C serves cleartext HTTP/2 alongside HTTP/1.1.
	H2C bool `mapstructure:"h2c"`

	// Validate checks the built document with kin-openapi before serving.
	Validate bool `mapstructure:"validate"`

	Log     LogConfig     `mapstructure:"log"`
	Page    PageConfig    `mapstructure:"page"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig selects the logger level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PageConfig mirrors swaggerpage.PageOptions.
type PageConfig struct {
	Title                  string                                 `mapstructure:"title"`
	Version                string                                 `mapstructure:"version"`
	Description            string                                 `mapstructure:"description"`
	Path                   string                                 `mapstructure:"path"`
	Host                   string                                 `mapstructure:"host"`
	Schemes                []string                               `mapstructure:"schemes"`
	APIs                   []string                               `mapstructure:"apis"`
	Tags                   []swagger.Tag                          `mapstructure:"tags"`
	Definitions            map[string]any                         `mapstructure:"definitions"`
	SecurityDefinitions    map[string]*swagger.SecurityDefinition `mapstructure:"security_definitions"`
	RoutePrefix            string                                 `mapstructure:"route_prefix"`
	ForceSecure            bool                                   `mapstructure:"force_secure"`
	ValidatorURL           string                                 `mapstructure:"validator_url"`
	SupportedSubmitMethods []string                               `mapstructure:"supported_submit_methods"`
	AssetDir               string                                 `mapstructure:"asset_dir"`
}

// HTTPConfig configures the middleware stack in front of the page.
type HTTPConfig struct {
	// RequestID is the request ID generator: uuidv4, uuidv7 or ulid.
	RequestID      string   `mapstructure:"request_id"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	Compression     CompressionConfig     `mapstructure:"compression"`
	Cache           CacheConfig           `mapstructure:"cache"`
	SecurityHeaders SecurityHeadersConfig `mapstructure:"security_headers"`
}

// CompressionConfig enables gzip and deflate response compression.
type CompressionConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Level     int  `mapstructure:"level"`
	MinLength int  `mapstructure:"min_length"`
}

// CacheConfig sets Cache-Control on page responses. The document and the
// viewer entry pages are always sent with no-cache; MaxAge applies to the
// remaining bundle files.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

// SecurityHeadersConfig sets browser hardening headers on page responses.
type SecurityHeadersConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	FrameOption           string `mapstructure:"frame_option"`
	ReferrerPolicy        string `mapstructure:"referrer_policy"`
	HSTSMaxAge            int    `mapstructure:"hsts_max_age"`
	ContentSecurityPolicy string `mapstructure:"content_security_policy"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. When empty, swaggerpage.yaml in the
	// working directory is read if it exists.
	File string

	// EnvFiles are loaded into the process environment before the
	// environment is consulted. Missing files are an error. When nil,
	// .env and .env.local are loaded if present.
	EnvFiles []string

	// Flags are bound by name; see flagKeys.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"listen":      "listen",
	"h2c":         "h2c",
	"validate":    "validate",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"title":       "page.title",
	"api-version": "page.version",
	"path":        "page.path",
	"host":        "page.host",
	"apis":        "page.apis",
	"asset-dir":   "page.asset_dir",
	"metrics":     "metrics.enabled",
}

// envOnlyKeys have no default but must still be visible to the
// environment. Leaving them unset keeps nil distinct from empty.
var envOnlyKeys = []string{
	"page.schemes",
	"page.apis",
	"page.supported_submit_methods",
	"http.trusted_proxies",
}

func defaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("h2c", false)
	v.SetDefault("validate", false)
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "json")
	v.SetDefault("page.title", "")
	v.SetDefault("page.version", "")
	v.SetDefault("page.description", "")
	v.SetDefault("page.path", "/docs")
	v.SetDefault("page.host", "")
	v.SetDefault("page.route_prefix", "")
	v.SetDefault("page.force_secure", false)
	v.SetDefault("page.validator_url", "")
	v.SetDefault("page.asset_dir", swaggerpage.DefaultAssetDir)
	v.SetDefault("http.request_id", "uuidv4")
	v.SetDefault("http.compression.enabled", true)
	v.SetDefault("http.compression.level", 0)
	v.SetDefault("http.compression.min_length", 1024)
	v.SetDefault("http.cache.enabled", true)
	v.SetDefault("http.cache.max_age", 24*time.Hour)
	v.SetDefault("http.security_headers.enabled", true)
	v.SetDefault("http.security_headers.frame_option", "DENY")
	v.SetDefault("http.security_headers.referrer_policy", "")
	v.SetDefault("http.security_headers.hsts_max_age", 0)
	v.SetDefault("http.security_headers.content_security_policy", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "swaggerpage")
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("swaggerpage")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if file := v.ConfigFileUsed(); file != "" {
		if err := cfg.readSchemaSections(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if files == nil {
		for _, name := range []string{".env", ".env.local"} {
			if _, err := os.Stat(name); err == nil {
				if err := godotenv.Load(name); err != nil {
					return fmt.Errorf("config: load %s: %w", name, err)
				}
			}
		}
		return nil
	}

	for _, name := range files {
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("config: load %s: %w", name, err)
		}
	}
	return nil
}

// readSchemaSections re-reads definitions and security_definitions from a
// YAML or JSON config file with key case preserved, since viper lowercases
// keys and schema property names are case-sensitive.
func (c *Config) readSchemaSections(file string) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", file, err)
	}

	var raw struct {
		Page struct {
			Definitions         map[string]any                         `yaml:"definitions"`
			SecurityDefinitions map[string]*swagger.SecurityDefinition `yaml:"security_definitions"`
		} `yaml:"page"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, file, err)
	}

	if raw.Page.Definitions != nil {
		c.Page.Definitions = raw.Page.Definitions
	}
	if raw.Page.SecurityDefinitions != nil {
		c.Page.SecurityDefinitions = raw.Page.SecurityDefinitions
	}
	return nil
}

// check validates the values the command interprets itself. Page options
// are validated by swaggerpage.CreatePage.
func (c *Config) check() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen is required", ErrInvalid)
	}
	if muxhandlers.GeneratorByName(c.HTTP.RequestID) == nil {
		return fmt.Errorf("%w: http.request_id %q is not one of uuidv4, uuidv7, ulid", ErrInvalid, c.HTTP.RequestID)
	}
	if c.HTTP.Cache.Enabled && c.HTTP.Cache.MaxAge < 0 {
		return fmt.Errorf("%w: http.cache.max_age must not be negative", ErrInvalid)
	}
	if c.HTTP.Compression.MinLength < 0 {
		return fmt.Errorf("%w: http.compression.min_length must not be negative", ErrInvalid)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: metrics.path must start with /", ErrInvalid)
	}
	return nil
}

// PageOptions converts the page section into options for CreatePage.
// validator_url "none" disables the validator; any other non-empty value
// is used as its URL.
func (c *Config) PageOptions(server *mux.Router, logger *slog.Logger) swaggerpage.PageOptions {
	p := c.Page

	opts := swaggerpage.PageOptions{
		Title:               p.Title,
		Version:             p.Version,
		Server:              server,
		Path:                p.Path,
		Description:         p.Description,
		Tags:                p.Tags,
		Host:                p.Host,
		APIs:                p.APIs,
		Definitions:         p.Definitions,
		SecurityDefinitions: p.SecurityDefinitions,
		RoutePrefix:         p.RoutePrefix,
		ForceSecure:         p.ForceSecure,
		AssetDir:            p.AssetDir,
		Logger:              logger,
	}

	if p.Schemes != nil {
		opts.Schemes = make([]swagger.Scheme, len(p.Schemes))
		for i, s := range p.Schemes {
			opts.Schemes[i] = swagger.Scheme(s)
		}
	}

	if p.SupportedSubmitMethods != nil {
		opts.SupportedSubmitMethods = make([]swaggerpage.SubmitMethod, len(p.SupportedSubmitMethods))
		for i, m := range p.SupportedSubmitMethods {
			opts.SupportedSubmitMethods[i] = swaggerpage.SubmitMethod(strings.ToLower(m))
		}
	}

	switch p.ValidatorURL {
	case "":
	case ValidatorNone:
		opts.ValidatorURL = swaggerpage.ValidatorDisabled()
	default:
		opts.ValidatorURL = swaggerpage.ValidatorAt(p.ValidatorURL)
	}

	return opts
}

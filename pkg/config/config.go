// Package config loads the export configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/storefront-catalog/pkg/cache"
	"github.com/Sternrassler/storefront-catalog/pkg/catalog"
	"github.com/Sternrassler/storefront-catalog/pkg/pagination"
	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
	"gopkg.in/yaml.v3"
)

// PlaceholderDomain is the example domain shipped in documentation.
const PlaceholderDomain = "your-shop.myshopify.com"

// MaxPageSize is the largest page the Storefront API serves.
const MaxPageSize = 250

// Configuration errors.
var (
	// ErrMissingToken is returned when no access token is configured.
	ErrMissingToken = errors.New("SHOPIFY_STOREFRONT_TOKEN is not set")

	// ErrPlaceholderDomain is returned when the example domain was not replaced.
	ErrPlaceholderDomain = errors.New("shop domain is still the placeholder " + PlaceholderDomain)

	// ErrInvalidPageSize is returned for page sizes outside 1..MaxPageSize.
	ErrInvalidPageSize = fmt.Errorf("page size must be between 1 and %d", MaxPageSize)
)

// Environment variable names.
const (
	EnvShopDomain  = "SHOPIFY_SHOP_DOMAIN"
	EnvAccessToken = "SHOPIFY_STOREFRONT_TOKEN"
	EnvAPIVersion  = "SHOPIFY_API_VERSION"
	EnvPageSize    = "CATALOG_PAGE_SIZE"
	EnvMaxPages    = "CATALOG_MAX_PAGES"
	EnvOutput      = "CATALOG_OUTPUT"
	EnvOutputDir   = "CATALOG_OUTPUT_DIR"
	EnvTimeout     = "CATALOG_TIMEOUT"
	EnvRedisAddr   = "REDIS_URL"
	EnvCacheTTL    = "CATALOG_CACHE_TTL"
	EnvMetricsAddr = "METRICS_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogPretty   = "LOG_PRETTY"
)

// Config is the complete export configuration.
type Config struct {
	ShopDomain  string        `yaml:"shop_domain"`
	AccessToken string        `yaml:"access_token"`
	APIVersion  string        `yaml:"api_version"`
	PageSize    int           `yaml:"page_size"`
	MaxPages    int           `yaml:"max_pages"`
	Output      string        `yaml:"output"`
	OutputDir   string        `yaml:"output_dir"`
	Timeout     time.Duration `yaml:"timeout"`

	// RedisAddr enables the page cache when set.
	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	// MetricsAddr starts the /metrics and /health listener when set.
	MetricsAddr string `yaml:"metrics_addr"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		APIVersion: storefront.DefaultAPIVersion,
		PageSize:   storefront.DefaultPageSize,
		MaxPages:   pagination.DefaultMaxPages,
		Output:     catalog.DefaultFilename,
		Timeout:    30 * time.Second,
		CacheTTL:   cache.DefaultTTL,
		LogLevel:   "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment. It does not validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.parseYAML(data, os.Getenv); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseYAML expands ${VAR} references with getenv and decodes data over cfg.
func (c *Config) parseYAML(data []byte, getenv func(string) string) error {
	expanded := os.Expand(string(data), getenv)
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides fields whose environment variable is non-empty.
func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString(EnvShopDomain, &c.ShopDomain)
	setString(EnvAccessToken, &c.AccessToken)
	setString(EnvAPIVersion, &c.APIVersion)
	setString(EnvOutput, &c.Output)
	setString(EnvOutputDir, &c.OutputDir)
	setString(EnvRedisAddr, &c.RedisAddr)
	setString(EnvMetricsAddr, &c.MetricsAddr)
	setString(EnvLogLevel, &c.LogLevel)

	if err := setInt(EnvPageSize, &c.PageSize); err != nil {
		return err
	}
	if err := setInt(EnvMaxPages, &c.MaxPages); err != nil {
		return err
	}
	if err := setDuration(EnvTimeout, &c.Timeout); err != nil {
		return err
	}
	if err := setDuration(EnvCacheTTL, &c.CacheTTL); err != nil {
		return err
	}

	if v := strings.TrimSpace(getenv(EnvLogPretty)); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogPretty, err)
		}
		c.LogPretty = pretty
	}

	return nil
}

// Validate reports the first configuration error that prevents a fetch.
func (c Config) Validate() error {
	if c.AccessToken == "" {
		return ErrMissingToken
	}
	if strings.EqualFold(strings.TrimSpace(c.ShopDomain), PlaceholderDomain) {
		return ErrPlaceholderDomain
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("%w (got %d)", ErrInvalidPageSize, c.PageSize)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0 (got %d)", c.MaxPages)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/ordersync/config"
	ConfigFileName    = "ordersync.yml"

	// DefaultAPIDomain is the storefront platform domain stores hang off of.
	DefaultAPIDomain = "mybrightsites.com"
)

// Store describes one storefront the sweeper manages. The API key is never
// written to the config file; APIKeyEnv names the environment variable that
// holds it.
type Store struct {
	Subdomain string `yaml:"subdomain" json:"subdomain"`
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`
}

// APIKey resolves the store's API key from the environment.
func (s Store) APIKey() string {
	return os.Getenv(s.APIKeyEnv)
}

// Config holds all ordersync configuration settings
type Config struct {
	// Stores is the list of storefronts to sweep
	Stores []Store `yaml:"stores" json:"stores"`

	// APIDomain is the platform domain; store URLs are {subdomain}.{APIDomain}
	APIDomain string `yaml:"api_domain" json:"api_domain"`

	// LookbackSeconds is how old an order must be before a stale "new" order
	// is moved to "in_progress"
	LookbackSeconds int `yaml:"lookback_seconds" json:"lookback_seconds"`

	// SweepIntervalSeconds is the scheduler period in server mode
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" json:"sweep_interval_seconds"`

	// HTTPTimeoutSeconds is the per-request timeout against store APIs
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`

	// PerPage is the page size requested when listing orders
	PerPage int `yaml:"per_page" json:"per_page"`

	// BindAddress and Port are where the status server listens
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        int    `yaml:"port" json:"port"`

	// LogFile, when set, tees logs to the named file in addition to stdout
	LogFile string `yaml:"log_file" json:"log_file"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		Stores:               []Store{},
		APIDomain:            DefaultAPIDomain,
		LookbackSeconds:      7200,
		SweepIntervalSeconds: 900,
		HTTPTimeoutSeconds:   30,
		PerPage:              50,
		BindAddress:          "0.0.0.0",
		Port:                 8000,
		sources:              make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("ORDERSYNC_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"stores", "api_domain", "lookback_seconds", "sweep_interval_seconds",
		"http_timeout_seconds", "per_page", "bind_address", "port", "log_file",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if len(file.Stores) > 0 {
		c.Stores = file.Stores
		c.sources["stores"] = "file"
	}
	if file.APIDomain != "" {
		c.APIDomain = file.APIDomain
		c.sources["api_domain"] = "file"
	}
	if file.LookbackSeconds != 0 {
		c.LookbackSeconds = file.LookbackSeconds
		c.sources["lookback_seconds"] = "file"
	}
	if file.SweepIntervalSeconds != 0 {
		c.SweepIntervalSeconds = file.SweepIntervalSeconds
		c.sources["sweep_interval_seconds"] = "file"
	}
	if file.HTTPTimeoutSeconds != 0 {
		c.HTTPTimeoutSeconds = file.HTTPTimeoutSeconds
		c.sources["http_timeout_seconds"] = "file"
	}
	if file.PerPage != 0 {
		c.PerPage = file.PerPage
		c.sources["per_page"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.LogFile != "" {
		c.LogFile = file.LogFile
		c.sources["log_file"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("ORDERSYNC_STORES"); val != "" {
		c.Stores = parseStoresEnv(val)
		c.sources["stores"] = "environment"
	}
	if val := os.Getenv("ORDERSYNC_API_DOMAIN"); val != "" {
		c.APIDomain = val
		c.sources["api_domain"] = "environment"
	}
	if val := os.Getenv("ORDERSYNC_LOOKBACK_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.LookbackSeconds = i
			c.sources["lookback_seconds"] = "environment"
		}
	}
	if val := os.Getenv("ORDERSYNC_SWEEP_INTERVAL_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SweepIntervalSeconds = i
			c.sources["sweep_interval_seconds"] = "environment"
		}
	}
	if val := os.Getenv("ORDERSYNC_HTTP_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.HTTPTimeoutSeconds = i
			c.sources["http_timeout_seconds"] = "environment"
		}
	}
	if val := os.Getenv("ORDERSYNC_PER_PAGE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.PerPage = i
			c.sources["per_page"] = "environment"
		}
	}
	if val := os.Getenv("BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("ORDERSYNC_LOG_FILE"); val != "" {
		c.LogFile = val
		c.sources["log_file"] = "environment"
	}
}

// parseStoresEnv parses ORDERSYNC_STORES, a comma-separated list of
// subdomain=API_KEY_ENV pairs, e.g.
// "bonappetit=BON_APPETIT_API_KEY,amentuminventory=AMENTUM_INVENTORY_API_KEY".
// A pair without the =API_KEY_ENV part falls back to the conventional name.
func parseStoresEnv(val string) []Store {
	var stores []Store
	for _, pair := range strings.Split(val, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		store := Store{Subdomain: strings.TrimSpace(parts[0])}
		if len(parts) == 2 {
			store.APIKeyEnv = strings.TrimSpace(parts[1])
		} else {
			store.APIKeyEnv = defaultKeyEnv(store.Subdomain)
		}
		stores = append(stores, store)
	}
	return stores
}

// defaultKeyEnv derives the conventional key variable name for a subdomain,
// e.g. "centricity-test-store" -> "CENTRICITY_TEST_STORE_API_KEY".
func defaultKeyEnv(subdomain string) string {
	name := strings.ToUpper(subdomain)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_API_KEY"
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Lookback returns the stale-order threshold as a duration
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackSeconds) * time.Second
}

// SweepInterval returns the scheduler period as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// HTTPTimeout returns the store API request timeout as a duration
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// StoreBySubdomain returns the configured store for a subdomain
func (c *Config) StoreBySubdomain(subdomain string) (Store, bool) {
	for _, s := range c.Stores {
		if s.Subdomain == subdomain {
			return s, true
		}
	}
	return Store{}, false
}

// AdminTokenSecret returns the HMAC secret used to authenticate mutating
// requests against the status server. Env only, never file.
func AdminTokenSecret() []byte {
	if val := os.Getenv("ORDERSYNC_ADMIN_TOKEN_SECRET"); val != "" {
		return []byte(val)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, s := range c.Stores {
		if s.Subdomain == "" {
			return fmt.Errorf("store with empty subdomain in config")
		}
		if seen[s.Subdomain] {
			return fmt.Errorf("duplicate store subdomain: %s", s.Subdomain)
		}
		seen[s.Subdomain] = true
		if s.APIKeyEnv == "" {
			return fmt.Errorf("store %s has no api_key_env", s.Subdomain)
		}
	}

	if c.LookbackSeconds <= 0 {
		return fmt.Errorf("lookback_seconds must be positive, got %d", c.LookbackSeconds)
	}
	if c.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("sweep_interval_seconds must be positive, got %d", c.SweepIntervalSeconds)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("per_page must be positive, got %d", c.PerPage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	storeNames := make([]string, len(c.Stores))
	for i, s := range c.Stores {
		storeNames[i] = s.Subdomain
	}

	return []Attribute{
		{Name: "stores", Value: strings.Join(storeNames, ","), Source: c.Source("stores")},
		{Name: "api_domain", Value: c.APIDomain, Source: c.Source("api_domain")},
		{Name: "lookback_seconds", Value: strconv.Itoa(c.LookbackSeconds), Source: c.Source("lookback_seconds")},
		{Name: "sweep_interval_seconds", Value: strconv.Itoa(c.SweepIntervalSeconds), Source: c.Source("sweep_interval_seconds")},
		{Name: "http_timeout_seconds", Value: strconv.Itoa(c.HTTPTimeoutSeconds), Source: c.Source("http_timeout_seconds")},
		{Name: "per_page", Value: strconv.Itoa(c.PerPage), Source: c.Source("per_page")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "log_file", Value: c.LogFile, Source: c.Source("log_file")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

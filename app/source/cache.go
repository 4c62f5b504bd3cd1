package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultRefreshInterval = 3600

// Cache holds the feed source configurations loaded from the sources
// directory. Safe for concurrent use. Sources that omit page_size or timeout
// inherit the process-level defaults passed to NewCache.
type Cache struct {
	sourcesDir      string
	defaultPageSize int
	defaultTimeout  int
	cache           map[string]*Config
	mu              sync.RWMutex
}

func NewCache(sourcesDir string, defaultPageSize, defaultTimeout int) *Cache {
	return &Cache{
		sourcesDir:      sourcesDir,
		defaultPageSize: defaultPageSize,
		defaultTimeout:  defaultTimeout,
		cache:           make(map[string]*Config),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := c.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", name,
			"enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (c *Cache) LoadConfig(name string) (*Config, error) {
	configFile := filepath.Join(c.sourcesDir, name+".yml")

	config, err := c.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = name

	if err := c.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[config.Name] = config

	return config, nil
}

func (c *Cache) GetConfig(name string) (*Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return config, nil
}

func (c *Cache) GetConfigs() map[string]*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(c.cache))
	for k, v := range c.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (c *Cache) GetEnabledConfigs() map[string]*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	enabled := make(map[string]*Config)
	for k, v := range c.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (c *Cache) GetConfigCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = defaultRefreshInterval
	}
	if config.Settings.PageSize == 0 {
		config.Settings.PageSize = c.defaultPageSize
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = c.defaultTimeout
	}

	return &config, nil
}

func (c *Cache) validateConfig(config *Config) error {
	if config.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if config.Settings.PageSize < 1 {
		return fmt.Errorf("page_size must be positive")
	}
	return nil
}

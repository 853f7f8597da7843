package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads and merges configuration from global and project paths, then
// applies environment overrides. Order of precedence (highest to lowest):
// environment, project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.auditflow/config.json
// Project: .auditflow/config.json (relative to cwd)
// A .env file in the cwd is loaded first so secrets can live outside the
// JSON files.
func LoadDefault() (*Config, error) {
	// Missing .env is fine; it only exists on machines that need secrets.
	_ = godotenv.Load(".env")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".auditflow", "config.json")
	projectPath := filepath.Join(".auditflow", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base
// config. Missing files are silently skipped. Malformed JSON returns an
// error.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Missing file is not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.Crawl.MaxPages > 0 {
		base.Crawl.MaxPages = loaded.Crawl.MaxPages
	}
	if loaded.Crawl.TimeoutSeconds > 0 {
		base.Crawl.TimeoutSeconds = loaded.Crawl.TimeoutSeconds
	}
	if loaded.Crawl.UserAgent != "" {
		base.Crawl.UserAgent = loaded.Crawl.UserAgent
	}
	if loaded.Insight.Endpoint != "" {
		base.Insight.Endpoint = loaded.Insight.Endpoint
	}
	if loaded.Insight.APIKey != "" {
		base.Insight.APIKey = loaded.Insight.APIKey
	}
	if loaded.Insight.Model != "" {
		base.Insight.Model = loaded.Insight.Model
	}
	if loaded.Insight.MaxTokens > 0 {
		base.Insight.MaxTokens = loaded.Insight.MaxTokens
	}
	if loaded.Database.Path != "" {
		base.Database.Path = loaded.Database.Path
	}
	if loaded.StatusFeed.Listen != "" {
		base.StatusFeed.Listen = loaded.StatusFeed.Listen
	}

	return nil
}

// applyEnv overrides config values from AUDITFLOW_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AUDITFLOW_INSIGHT_ENDPOINT"); v != "" {
		cfg.Insight.Endpoint = v
	}
	if v := os.Getenv("AUDITFLOW_INSIGHT_API_KEY"); v != "" {
		cfg.Insight.APIKey = v
	}
	if v := os.Getenv("AUDITFLOW_INSIGHT_MODEL"); v != "" {
		cfg.Insight.Model = v
	}
	if v := os.Getenv("AUDITFLOW_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AUDITFLOW_STATUS_LISTEN"); v != "" {
		cfg.StatusFeed.Listen = v
	}
	if v := os.Getenv("AUDITFLOW_CRAWL_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Crawl.MaxPages = n
		}
	}
}

package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			MaxPages:       8,
			TimeoutSeconds: 20,
			UserAgent:      "auditflow/1.0 (+site audit crawler)",
		},
		Insight: InsightConfig{
			Model:     "default",
			MaxTokens: 2048,
		},
		Database: DatabaseConfig{
			Path: ".auditflow/audits.db",
		},
	}
}

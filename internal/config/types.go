package config

// CrawlConfig controls the crawler agent.
type CrawlConfig struct {
	MaxPages       int    `json:"max_pages"`       // Page budget per run
	TimeoutSeconds int    `json:"timeout_seconds"` // Per-request timeout
	UserAgent      string `json:"user_agent"`
}

// InsightConfig configures the external analytical service. An empty
// endpoint disables enrichment; agents run on heuristics alone.
type InsightConfig struct {
	Endpoint  string `json:"endpoint,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// DatabaseConfig configures the persistence sink. An empty path disables
// durable storage for the run.
type DatabaseConfig struct {
	Path string `json:"path,omitempty"`
}

// StatusFeedConfig configures the websocket live-status feed.
type StatusFeedConfig struct {
	Listen string `json:"listen,omitempty"` // e.g. ":8701"; empty disables the feed
}

// Config is the top-level configuration.
type Config struct {
	Crawl      CrawlConfig      `json:"crawl"`
	Insight    InsightConfig    `json:"insight"`
	Database   DatabaseConfig   `json:"database"`
	StatusFeed StatusFeedConfig `json:"status_feed"`
}

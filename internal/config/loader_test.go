package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// TestLoadDefaultsWhenFilesMissing verifies missing files fall through to
// defaults without error.
func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/global.json", "/nonexistent/project.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawl.MaxPages != 8 {
		t.Errorf("expected default max pages 8, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Insight.MaxTokens != 2048 {
		t.Errorf("expected default max tokens 2048, got %d", cfg.Insight.MaxTokens)
	}
	if cfg.Database.Path != ".auditflow/audits.db" {
		t.Errorf("unexpected default database path %q", cfg.Database.Path)
	}
}

// TestProjectOverridesGlobal verifies merge precedence between the two
// config files, field by field.
func TestProjectOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global.json", `{
		"crawl": {"max_pages": 20, "user_agent": "global-agent"},
		"insight": {"endpoint": "https://insight.global.example"}
	}`)
	project := writeConfig(t, dir, "project.json", `{
		"crawl": {"max_pages": 5},
		"database": {"path": "project.db"}
	}`)

	cfg, err := Load(global, project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Crawl.MaxPages != 5 {
		t.Errorf("expected project max pages 5, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.UserAgent != "global-agent" {
		t.Errorf("expected global user agent to survive, got %q", cfg.Crawl.UserAgent)
	}
	if cfg.Insight.Endpoint != "https://insight.global.example" {
		t.Errorf("expected global endpoint to survive, got %q", cfg.Insight.Endpoint)
	}
	if cfg.Database.Path != "project.db" {
		t.Errorf("expected project database path, got %q", cfg.Database.Path)
	}
	if cfg.Crawl.TimeoutSeconds != 20 {
		t.Errorf("expected default timeout to survive, got %d", cfg.Crawl.TimeoutSeconds)
	}
}

// TestEnvOverrides verifies environment variables beat both config files.
func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	project := writeConfig(t, dir, "project.json", `{
		"insight": {"endpoint": "https://insight.file.example"},
		"crawl": {"max_pages": 12}
	}`)

	t.Setenv("AUDITFLOW_INSIGHT_ENDPOINT", "https://insight.env.example")
	t.Setenv("AUDITFLOW_INSIGHT_API_KEY", "sk-test")
	t.Setenv("AUDITFLOW_CRAWL_MAX_PAGES", "3")
	t.Setenv("AUDITFLOW_DB_PATH", "env.db")

	cfg, err := Load("", project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Insight.Endpoint != "https://insight.env.example" {
		t.Errorf("expected env endpoint, got %q", cfg.Insight.Endpoint)
	}
	if cfg.Insight.APIKey != "sk-test" {
		t.Errorf("expected env api key, got %q", cfg.Insight.APIKey)
	}
	if cfg.Crawl.MaxPages != 3 {
		t.Errorf("expected env max pages 3, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Database.Path != "env.db" {
		t.Errorf("expected env database path, got %q", cfg.Database.Path)
	}
}

// TestInvalidEnvNumberIgnored verifies unparseable numeric env values keep
// the file value.
func TestInvalidEnvNumberIgnored(t *testing.T) {
	t.Setenv("AUDITFLOW_CRAWL_MAX_PAGES", "lots")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawl.MaxPages != 8 {
		t.Errorf("expected default max pages on bad env value, got %d", cfg.Crawl.MaxPages)
	}
}

// TestMalformedConfigFails verifies malformed JSON is a hard error, unlike a
// missing file.
func TestMalformedConfigFails(t *testing.T) {
	dir := t.TempDir()
	broken := writeConfig(t, dir, "broken.json", `{"crawl": `)

	if _, err := Load(broken, ""); err == nil {
		t.Error("expected error for malformed global config")
	}
	if _, err := Load("", broken); err == nil {
		t.Error("expected error for malformed project config")
	}
}

package agents

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"auditflow/internal/agent"
	"auditflow/internal/config"
	"auditflow/internal/store"
)

// Crawler fetches the target site and populates the context store with
// extracted pages. It is the collection root: every other agent depends on
// it directly or transitively.
type Crawler struct {
	st    *store.Store
	cfg   config.CrawlConfig
	httpc *http.Client
}

// NewCrawler creates the crawler agent.
func NewCrawler(st *store.Store, cfg config.CrawlConfig) *Crawler {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 8
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	return &Crawler{
		st:  st,
		cfg: cfg,
		httpc: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *Crawler) Name() string           { return NameCrawler }
func (c *Crawler) DisplayName() string    { return DisplayNames[NameCrawler] }
func (c *Crawler) Dependencies() []string { return nil }

// Run crawls breadth-first from the company URL, staying on the same host,
// up to the configured page budget. It fails when not even the start page
// could be fetched; partial crawls succeed.
func (c *Crawler) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	startURL := strings.TrimRight(c.st.CompanyURL, "/")
	if startURL == "" {
		return agent.Result{}, fmt.Errorf("no company URL configured")
	}

	queue := []string{startURL}
	visited := map[string]bool{startURL: true}
	var crawled []string

	for len(queue) > 0 && len(crawled) < c.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return agent.Result{}, err
		}

		pageURL := queue[0]
		queue = queue[1:]

		progress(5+90*len(crawled)/c.cfg.MaxPages, "Crawling "+pageURL)

		page, err := c.fetch(ctx, pageURL)
		if err != nil {
			// A single unreachable page is not fatal unless it is the start page.
			if len(crawled) == 0 && pageURL == startURL {
				return agent.Result{}, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
			}
			continue
		}

		c.st.SetPage(page)
		crawled = append(crawled, pageURL)

		for _, link := range page.InternalLinks {
			link = strings.TrimRight(link, "/")
			if !visited[link] {
				visited[link] = true
				queue = append(queue, link)
			}
		}
	}

	if len(crawled) == 0 {
		return agent.Result{}, fmt.Errorf("no pages crawled from %s", startURL)
	}

	return agent.Result{
		Analysis: fmt.Sprintf("Crawled %d pages from %s", len(crawled), startURL),
		Data: map[string]any{
			"pages_crawled": len(crawled),
			"urls":          crawled,
		},
	}, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*store.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("not an HTML page: %s", ct)
	}

	page, err := extractPage(pageURL, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	page.StatusCode = resp.StatusCode
	page.LoadTime = time.Since(start)
	return page, nil
}

// Package store holds all cross-agent state for a single audit run behind a
// concurrency-safe interface. Agents contribute crawled pages, page captures
// and analysis results; the orchestrator and dependent agents read them back.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Page is the extracted content of one crawled page, keyed by URL.
type Page struct {
	URL             string
	Title           string
	MetaDescription string
	OGImage         string
	H1              []string
	H2              []string
	H3              []string
	Text            string
	CTAs            []CTA
	FormCount       int
	InternalLinks   []string
	ExternalLinks   []string
	SocialLinks     map[string]string
	Testimonials    []string
	HasSchema       bool
	StatusCode      int
	LoadTime        time.Duration
	PageType        string // home, product, pricing, about, blog, contact, other
}

// CTA is a call-to-action element found on a page.
type CTA struct {
	Text string
	Href string
}

// Capture is a lightweight content snapshot of a page region,
// keyed by "url::kind".
type Capture struct {
	URL         string
	Kind        string // hero, meta, social
	Content     string
	Description string
	CapturedAt  time.Time
}

// Competitor is a company surfaced by the competitor agent.
type Competitor struct {
	Name   string
	Domain string
	Source string
}

// Result is an agent's terminal record as visible to other agents. Status
// and Payload are written in a single critical section, so a reader that
// observed status "completed" always sees the full payload.
type Result struct {
	Status  string
	Payload map[string]any
}

// Store is the shared, mutable state container for one run. All writes are
// serialized behind one exclusive lock; reads take the shared lock and
// return reference-stable snapshots (values are replaced, never mutated in
// place).
type Store struct {
	RunID       string
	CompanyURL  string
	CompanyName string
	RunMode     string // full or quick

	mu          sync.RWMutex
	pages       map[string]*Page
	captures    map[string]*Capture
	results     map[string]Result
	profile     map[string]any
	competitors []Competitor
}

// New creates an empty store for one run.
func New(runID, companyURL, companyName, runMode string) *Store {
	return &Store{
		RunID:       runID,
		CompanyURL:  companyURL,
		CompanyName: companyName,
		RunMode:     runMode,
		pages:       make(map[string]*Page),
		captures:    make(map[string]*Capture),
		results:     make(map[string]Result),
		profile:     make(map[string]any),
	}
}

// SetPage stores a crawled page, overwriting any page with the same URL.
func (s *Store) SetPage(p *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.URL] = p
}

// SetCapture stores a page capture under the key "url::kind".
func (s *Store) SetCapture(c *Capture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures[fmt.Sprintf("%s::%s", c.URL, c.Kind)] = c
}

// SetResult records an agent's terminal status together with its payload.
// The two are written under one lock acquisition so dependents never observe
// a completed status without the payload.
func (s *Store) SetResult(agentName, status string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[agentName] = Result{Status: status, Payload: payload}
}

// Result returns the terminal record for the named agent, if present.
func (s *Store) Result(agentName string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[agentName]
	return res, ok
}

// SetProfile replaces the company profile built by the research agent.
func (s *Store) SetProfile(profile map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
}

// Profile returns the company profile (may be empty, never nil).
func (s *Store) Profile() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetCompetitors replaces the competitor list.
func (s *Store) SetCompetitors(list []Competitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitors = append([]Competitor(nil), list...)
}

// Competitors returns a copy of the competitor list.
func (s *Store) Competitors() []Competitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Competitor(nil), s.competitors...)
}

// Pages returns all crawled pages.
func (s *Store) Pages() []*Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		pages = append(pages, p)
	}
	return pages
}

// PageCount returns the number of crawled pages.
func (s *Store) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Homepage returns the page matching the run's company URL, falling back to
// any page of type "home", then any page at all.
func (s *Store) Homepage() *Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := strings.TrimRight(s.CompanyURL, "/")
	for url, p := range s.pages {
		if strings.TrimRight(url, "/") == normalized {
			return p
		}
	}
	for _, p := range s.pages {
		if p.PageType == "home" {
			return p
		}
	}
	for _, p := range s.pages {
		return p
	}
	return nil
}

// PagesByType returns all pages of the given type.
func (s *Store) PagesByType(pageType string) []*Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Page
	for _, p := range s.pages {
		if p.PageType == pageType {
			out = append(out, p)
		}
	}
	return out
}

// AllText aggregates page content into one prompt-ready string, stopping
// before the byte budget is exceeded. Per-page text is truncated to keep a
// single huge page from consuming the whole budget.
func (s *Store) AllText(maxBytes int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const perPageText = 5000

	var b strings.Builder
	for url, p := range s.pages {
		var chunk strings.Builder
		fmt.Fprintf(&chunk, "\n--- PAGE: %s ---\n", url)
		fmt.Fprintf(&chunk, "Title: %s\n", p.Title)
		if len(p.H1) > 0 {
			fmt.Fprintf(&chunk, "H1: %s\n", strings.Join(p.H1, ", "))
		}
		if len(p.H2) > 0 {
			h2 := p.H2
			if len(h2) > 10 {
				h2 = h2[:10]
			}
			fmt.Fprintf(&chunk, "H2: %s\n", strings.Join(h2, ", "))
		}
		text := p.Text
		if len(text) > perPageText {
			text = text[:perPageText]
		}
		fmt.Fprintf(&chunk, "Content:\n%s\n", text)

		if b.Len()+chunk.Len() > maxBytes {
			break
		}
		b.WriteString(chunk.String())
	}
	return b.String()
}

// CapturesForURL returns all captures taken of the given URL.
func (s *Store) CapturesForURL(url string) []*Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Capture
	prefix := url + "::"
	for key, c := range s.captures {
		if strings.HasPrefix(key, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// CapturesByKind returns all captures of the given kind across URLs.
func (s *Store) CapturesByKind(kind string) []*Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Capture
	for _, c := range s.captures {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

package agents

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"auditflow/internal/agent"
	"auditflow/internal/store"
)

// Competitor surfaces likely competitors from outbound link patterns and
// comparison pages, and scores how well the site handles competitive
// positioning.
type Competitor struct {
	st *store.Store
}

// NewCompetitor creates the competitor agent.
func NewCompetitor(st *store.Store) *Competitor {
	return &Competitor{st: st}
}

func (a *Competitor) Name() string           { return NameCompetitor }
func (a *Competitor) DisplayName() string    { return DisplayNames[NameCompetitor] }
func (a *Competitor) Dependencies() []string { return []string{NameCrawler} }

func (a *Competitor) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	pages := a.st.Pages()
	if len(pages) == 0 {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(30, "Mining outbound links")

	ownHost := hostOf(a.st.CompanyURL)
	counts := make(map[string]int)
	for _, p := range pages {
		for _, link := range p.ExternalLinks {
			h := hostOf(link)
			if h == "" || h == ownHost || isInfrastructureHost(h) {
				continue
			}
			counts[h]++
		}
	}

	type domainCount struct {
		domain string
		count  int
	}
	ranked := make([]domainCount, 0, len(counts))
	for d, c := range counts {
		ranked = append(ranked, domainCount{d, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].domain < ranked[j].domain
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	competitors := make([]store.Competitor, 0, len(ranked))
	for _, dc := range ranked {
		competitors = append(competitors, store.Competitor{
			Name:   strings.TrimSuffix(dc.domain, pathSuffix(dc.domain)),
			Domain: dc.domain,
			Source: "outbound links",
		})
	}
	a.st.SetCompetitors(competitors)

	progress(70, "Checking competitive positioning")
	comparisonPages := len(a.st.PagesByType("comparison"))

	score := 40.0
	if comparisonPages > 0 {
		score += 40
	}
	if len(competitors) > 0 {
		score += 20
	}
	score = clampScore(score)

	var recs []agent.Recommendation
	if comparisonPages == 0 {
		recs = append(recs, agent.Recommendation{
			Title:  "Publish comparison pages",
			Detail: "No comparison or alternatives pages found; competitors own those search terms unchallenged.",
			Impact: "Medium", Effort: "Medium",
		})
	}

	domains := make([]string, 0, len(competitors))
	for _, c := range competitors {
		domains = append(domains, c.Domain)
	}

	return agent.Result{
		Score: score,
		Grade: scoreToGrade(score),
		Analysis: fmt.Sprintf("Identified %d candidate competitors from outbound links; %d comparison pages on site.",
			len(competitors), comparisonPages),
		Recommendations: recs,
		Data: map[string]any{
			"competitors":      domains,
			"comparison_pages": comparisonPages,
		},
	}, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// isInfrastructureHost filters CDNs, analytics and similar noise domains
// that outbound links commonly point at.
func isInfrastructureHost(host string) bool {
	for _, frag := range []string{
		"google", "gstatic", "cloudflare", "amazonaws", "jsdelivr",
		"googletagmanager", "fonts.", "cdn.", "stripe.com", "intercom",
	} {
		if strings.Contains(host, frag) {
			return true
		}
	}
	if _, ok := socialHosts[host]; ok {
		return true
	}
	return false
}

func pathSuffix(domain string) string {
	if idx := strings.LastIndex(domain, "."); idx > 0 {
		return domain[idx:]
	}
	return ""
}

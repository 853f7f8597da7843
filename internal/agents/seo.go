package agents

import (
	"context"
	"fmt"

	"auditflow/internal/agent"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// SEO scores on-page search fundamentals: titles, meta descriptions,
// heading structure, structured data and internal linking.
type SEO struct {
	st *store.Store
	ic *insight.Client
}

// NewSEO creates the SEO agent. ic may be nil.
func NewSEO(st *store.Store, ic *insight.Client) *SEO {
	return &SEO{st: st, ic: ic}
}

func (a *SEO) Name() string           { return NameSEO }
func (a *SEO) DisplayName() string    { return DisplayNames[NameSEO] }
func (a *SEO) Dependencies() []string { return []string{NameCrawler} }

func (a *SEO) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	pages := a.st.Pages()
	if len(pages) == 0 {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(20, "Checking on-page fundamentals")

	var titleOK, metaOK, oneH1, schema, internalLinks int
	for _, p := range pages {
		if n := len(p.Title); n >= 30 && n <= 60 {
			titleOK++
		}
		if n := len(p.MetaDescription); n >= 70 && n <= 160 {
			metaOK++
		}
		if len(p.H1) == 1 {
			oneH1++
		}
		if p.HasSchema {
			schema++
		}
		internalLinks += len(p.InternalLinks)
	}

	n := float64(len(pages))
	score := clampScore(
		30*float64(titleOK)/n +
			25*float64(metaOK)/n +
			20*float64(oneH1)/n +
			15*float64(schema)/n +
			10*minf(float64(internalLinks)/(n*5), 1))

	progress(60, "Compiling recommendations")

	var recs []agent.Recommendation
	if titleOK < len(pages) {
		recs = append(recs, agent.Recommendation{
			Title:  "Tune title tags",
			Detail: fmt.Sprintf("%d of %d pages have a title outside the 30-60 character range.", len(pages)-titleOK, len(pages)),
			Impact: "High", Effort: "Low",
		})
	}
	if metaOK < len(pages) {
		recs = append(recs, agent.Recommendation{
			Title:  "Write meta descriptions",
			Detail: fmt.Sprintf("%d of %d pages lack a meta description in the 70-160 character range.", len(pages)-metaOK, len(pages)),
			Impact: "Medium", Effort: "Low",
		})
	}
	if oneH1 < len(pages) {
		recs = append(recs, agent.Recommendation{
			Title:  "Use exactly one H1 per page",
			Detail: fmt.Sprintf("%d of %d pages have zero or multiple H1 headings.", len(pages)-oneH1, len(pages)),
			Impact: "Medium", Effort: "Low",
		})
	}
	if schema == 0 {
		recs = append(recs, agent.Recommendation{
			Title:  "Add structured data",
			Detail: "No JSON-LD structured data found on any crawled page.",
			Impact: "Medium", Effort: "Medium",
		})
	}

	analysis := fmt.Sprintf(
		"Across %d pages: %d well-sized titles, %d solid meta descriptions, %d with a single H1, %d carrying structured data.",
		len(pages), titleOK, metaOK, oneH1, schema)
	if a.ic != nil {
		progress(80, "Writing SEO narrative")
		enriched, err := a.ic.Complete(ctx,
			fmt.Sprintf("Write a short SEO assessment for this site.\n%s", a.st.AllText(25000)),
			"You are a technical SEO consultant. Be specific and concise.")
		if err != nil {
			return agent.Result{}, fmt.Errorf("seo narrative failed: %w", err)
		}
		analysis = enriched
	}

	return agent.Result{
		Score:           score,
		Grade:           scoreToGrade(score),
		Analysis:        analysis,
		Recommendations: recs,
		Data: map[string]any{
			"pages":          len(pages),
			"titles_ok":      titleOK,
			"metas_ok":       metaOK,
			"single_h1":      oneH1,
			"schema_pages":   schema,
			"internal_links": internalLinks,
		},
	}, nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"auditflow/internal/agent"
	"auditflow/internal/store"
)

// Social scores off-site presence: linked social profiles and share-preview
// metadata.
type Social struct {
	st *store.Store
}

// NewSocial creates the social agent.
func NewSocial(st *store.Store) *Social {
	return &Social{st: st}
}

func (a *Social) Name() string           { return NameSocial }
func (a *Social) DisplayName() string    { return DisplayNames[NameSocial] }
func (a *Social) Dependencies() []string { return []string{NameCrawler} }

func (a *Social) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	pages := a.st.Pages()
	if len(pages) == 0 {
		return agent.Result{}, fmt.Errorf("no crawled pages to analyze")
	}

	progress(40, "Scanning social presence")

	platforms := make(map[string]string)
	ogPages := 0
	for _, p := range pages {
		for platform, url := range p.SocialLinks {
			platforms[platform] = url
		}
		if p.OGImage != "" {
			ogPages++
		}
	}

	score := clampScore(20*minf(float64(len(platforms)), 3) + 40*float64(ogPages)/float64(len(pages)))

	var recs []agent.Recommendation
	if len(platforms) == 0 {
		recs = append(recs, agent.Recommendation{
			Title:  "Link social profiles",
			Detail: "No social profile links found anywhere on the site.",
			Impact: "Medium", Effort: "Low",
		})
	}
	if ogPages == 0 {
		recs = append(recs, agent.Recommendation{
			Title:  "Add share-preview images",
			Detail: "No og:image metadata found; shared links render without a preview.",
			Impact: "Medium", Effort: "Low",
		})
	}

	names := make([]string, 0, len(platforms))
	for p := range platforms {
		names = append(names, p)
	}
	sort.Strings(names)

	return agent.Result{
		Score: score,
		Grade: scoreToGrade(score),
		Analysis: fmt.Sprintf("Linked platforms: %s. %d of %d pages carry share-preview metadata.",
			strings.Join(names, ", "), ogPages, len(pages)),
		Recommendations: recs,
		Data: map[string]any{
			"platforms": names,
			"og_pages":  ogPages,
		},
	}, nil
}

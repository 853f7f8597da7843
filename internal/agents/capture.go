package agents

import (
	"context"
	"fmt"
	"time"

	"auditflow/internal/agent"
	"auditflow/internal/store"
)

// Capture records lightweight content snapshots of every crawled page:
// the hero region, the meta tags, and the social preview image. Downstream
// agents and the rendered report reference captures by url::kind.
type Capture struct {
	st *store.Store
}

// NewCapture creates the capture agent.
func NewCapture(st *store.Store) *Capture {
	return &Capture{st: st}
}

func (a *Capture) Name() string           { return NameCapture }
func (a *Capture) DisplayName() string    { return DisplayNames[NameCapture] }
func (a *Capture) Dependencies() []string { return []string{NameCrawler} }

func (a *Capture) Run(ctx context.Context, progress agent.ProgressFunc) (agent.Result, error) {
	pages := a.st.Pages()
	if len(pages) == 0 {
		return agent.Result{}, fmt.Errorf("no crawled pages to capture")
	}

	now := time.Now().UTC()
	captured := 0

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return agent.Result{}, err
		}
		progress(10+85*i/len(pages), "Capturing "+p.URL)

		hero := ""
		if len(p.H1) > 0 {
			hero = p.H1[0]
		}
		if hero != "" || p.Text != "" {
			body := p.Text
			if len(body) > 280 {
				body = body[:280]
			}
			a.st.SetCapture(&store.Capture{
				URL:         p.URL,
				Kind:        "hero",
				Content:     hero + "\n" + body,
				Description: "Above-the-fold headline and lead copy",
				CapturedAt:  now,
			})
			captured++
		}

		a.st.SetCapture(&store.Capture{
			URL:         p.URL,
			Kind:        "meta",
			Content:     p.Title + "\n" + p.MetaDescription,
			Description: "Title and meta description",
			CapturedAt:  now,
		})
		captured++

		if p.OGImage != "" {
			a.st.SetCapture(&store.Capture{
				URL:         p.URL,
				Kind:        "social",
				Content:     p.OGImage,
				Description: "Social preview image",
				CapturedAt:  now,
			})
			captured++
		}
	}

	return agent.Result{
		Analysis: fmt.Sprintf("Captured %d snapshots across %d pages", captured, len(pages)),
		Data: map[string]any{
			"captures": captured,
			"pages":    len(pages),
		},
	}, nil
}

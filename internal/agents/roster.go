// Package agents contains the specialist audit agents. Each one implements
// the agent.Agent contract; the orchestrator decides when they run.
package agents

import (
	"auditflow/internal/agent"
	"auditflow/internal/config"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// Agent name constants. Names are the keys used for dependencies, context
// store results and persistence rows.
const (
	NameCrawler    = "crawler"
	NameCapture    = "capture"
	NameResearch   = "research"
	NameCompetitor = "competitor"
	NameSEO        = "seo"
	NameMessaging  = "messaging"
	NameConversion = "conversion"
	NameSocial     = "social"
	NameICP        = "icp"
	NameReport     = "report"
)

// DisplayNames maps agent names to human-readable labels.
var DisplayNames = map[string]string{
	NameCrawler:    "Site Crawler",
	NameCapture:    "Page Capture",
	NameResearch:   "Company Research",
	NameCompetitor: "Competitor Intelligence",
	NameSEO:        "SEO & Visibility",
	NameMessaging:  "Messaging & Positioning",
	NameConversion: "Conversion Optimization",
	NameSocial:     "Social & Engagement",
	NameICP:        "ICP & Segmentation",
	NameReport:     "Report Synthesis",
}

// QuickAgents is the reduced subset that runs in quick mode.
var QuickAgents = map[string]bool{
	NameCrawler:    true,
	NameCapture:    true,
	NameResearch:   true,
	NameSEO:        true,
	NameMessaging:  true,
	NameCompetitor: true,
	NameReport:     true,
}

// ScoredAgents lists the analysis agents whose results carry a section
// score the report aggregates.
var ScoredAgents = []string{
	NameSEO,
	NameMessaging,
	NameConversion,
	NameSocial,
	NameCompetitor,
}

// Roster constructs one instance of every known agent for a run.
// Construction is cheap and side-effect free; the orchestrator filters the
// roster by run mode afterwards. ic may be nil (heuristics-only run).
func Roster(st *store.Store, ic *insight.Client, crawl config.CrawlConfig) []agent.Agent {
	return []agent.Agent{
		NewCrawler(st, crawl),
		NewCapture(st),
		NewResearch(st, ic),
		NewCompetitor(st),
		NewSEO(st, ic),
		NewMessaging(st, ic),
		NewConversion(st),
		NewSocial(st),
		NewICP(st, ic),
		NewReport(st),
	}
}

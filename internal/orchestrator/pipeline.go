// Package orchestrator owns the set of registered agents for one run and
// executes them in a fixed, hand-ordered sequence of phases. Fixed phases
// were chosen over a general topological scheduler: the dependency graph is
// shallow and stable, and fixed phases make skip-vs-run trivially auditable.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/gammazero/toposort"
	"golang.org/x/sync/errgroup"

	"auditflow/internal/agent"
	"auditflow/internal/agents"
	"auditflow/internal/config"
	"auditflow/internal/events"
	"auditflow/internal/insight"
	"auditflow/internal/store"
)

// Run mode constants.
const (
	ModeFull  = "full"
	ModeQuick = "quick"
)

// Phase is one batch of agents executed concurrently.
type Phase struct {
	Name       string
	AgentNames []string
}

// Phases is the fixed execution order. Later phases may depend on results
// of earlier ones; within a phase there is no ordering guarantee.
var Phases = []Phase{
	{Name: "Crawling", AgentNames: []string{agents.NameCrawler}},
	{Name: "Captures", AgentNames: []string{agents.NameCapture}},
	{Name: "Research", AgentNames: []string{agents.NameResearch}},
	{Name: "Analysis", AgentNames: []string{
		agents.NameCompetitor,
		agents.NameSEO,
		agents.NameMessaging,
		agents.NameConversion,
		agents.NameSocial,
	}},
	{Name: "Segmentation", AgentNames: []string{agents.NameICP}},
	{Name: "Reporting", AgentNames: []string{agents.NameReport}},
}

// Pipeline coordinates one audit run. It never fails the run because an
// individual agent failed; only scheduler-fatal errors propagate out of Run.
type Pipeline struct {
	store   *store.Store
	bus     *events.Bus
	sink    agent.Sink
	ic      *insight.Client
	crawl   config.CrawlConfig
	policy  agent.RetryPolicy
	runners map[string]*agent.Runner
}

// New creates a pipeline for one run. sink may be nil (no durable storage);
// ic may be nil (heuristics-only agents).
func New(st *store.Store, bus *events.Bus, sink agent.Sink, ic *insight.Client, crawl config.CrawlConfig) *Pipeline {
	return &Pipeline{
		store:   st,
		bus:     bus,
		sink:    sink,
		ic:      ic,
		crawl:   crawl,
		policy:  agent.DefaultRetryPolicy(),
		runners: make(map[string]*agent.Runner),
	}
}

// SetRetryPolicy overrides the retry policy applied to every agent.
// Must be called before RegisterAll.
func (p *Pipeline) SetRetryPolicy(policy agent.RetryPolicy) {
	p.policy = policy
}

// Register wraps one agent in a Runner and adds it to the pipeline.
func (p *Pipeline) Register(a agent.Agent) {
	p.runners[a.Name()] = agent.NewRunner(a, p.store, p.bus, p.sink, p.policy)
}

// RegisterAll constructs every known agent, filters by run mode, validates
// the declared dependency graph and pre-registers a pending record for each
// agent in the persistence sink. Returns an error only for a cyclic graph.
func (p *Pipeline) RegisterAll() error {
	isQuick := p.store.RunMode == ModeQuick

	for _, a := range agents.Roster(p.store, p.ic, p.crawl) {
		if isQuick && !agents.QuickAgents[a.Name()] {
			continue
		}
		p.Register(a)
	}

	if err := p.validateGraph(); err != nil {
		return err
	}

	names := make([]string, 0, len(p.runners))
	for name, r := range p.runners {
		names = append(names, name)
		if err := p.sinkFor(r).SaveProgress(context.Background(), name, 0, "", agent.StatusPending); err != nil {
			log.Printf("WARNING: failed to pre-register %s: %v", name, err)
		}
	}
	log.Printf("Registered %d agents: %v", len(p.runners), names)
	return nil
}

func (p *Pipeline) sinkFor(*agent.Runner) agent.Sink {
	if p.sink == nil {
		return agent.NopSink{}
	}
	return p.sink
}

// validateGraph runs a topological sort over the declared dependencies of
// registered agents. A cycle is a configuration error; a dependency on an
// unregistered name is only a warning, since the owning agent will simply
// stay pending for the whole run.
func (p *Pipeline) validateGraph() error {
	var edges []toposort.Edge
	for name, r := range p.runners {
		deps := r.Dependencies()
		if len(deps) == 0 {
			edges = append(edges, toposort.Edge{nil, name})
			continue
		}
		for _, dep := range deps {
			if _, ok := p.runners[dep]; !ok {
				log.Printf("WARNING: agent %q depends on unregistered agent %q and will never run", name, dep)
				continue
			}
			edges = append(edges, toposort.Edge{dep, name})
		}
	}

	if _, err := toposort.Toposort(edges); err != nil {
		return fmt.Errorf("dependency graph contains cycle: %w", err)
	}
	return nil
}

// RunPhase executes one phase: every named agent that is registered and
// whose dependencies are met runs concurrently; the rest are skipped for
// this run (not deferred). Blocks until all scheduled agents reach a
// terminal state. Returns the number of agents actually executed.
func (p *Pipeline) RunPhase(ctx context.Context, phaseName string, agentNames []string) int {
	var ready []*agent.Runner
	for _, name := range agentNames {
		r, ok := p.runners[name]
		if !ok {
			continue // not part of this run mode
		}
		if !r.CanRun() {
			log.Printf("WARNING: [%s] skipping %s: dependencies not met", phaseName, name)
			continue
		}
		log.Printf("[%s] starting agent: %s", phaseName, name)
		ready = append(ready, r)
	}

	if len(ready) == 0 {
		return 0
	}

	log.Printf("[%s] running %d agents in parallel", phaseName, len(ready))

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ready {
		r := r
		g.Go(func() error {
			r.Execute(gctx)
			return nil // agent outcomes live in their records, never abort the phase
		})
	}
	_ = g.Wait()
	return len(ready)
}

// Run executes all phases in order. Each phase starts only after the
// previous one fully settled, including failures. Individual agent failures
// never fail the run; callers inspect Summary. Returns ctx.Err() when the
// run was cancelled mid-flight.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.runners) == 0 {
		if err := p.RegisterAll(); err != nil {
			return err
		}
	}

	log.Printf("Starting %s audit for %s (run %s)", p.store.RunMode, p.store.CompanyURL, p.store.RunID)

	for _, phase := range Phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.RunPhase(ctx, phase.Name, phase.AgentNames)
	}

	log.Printf("Audit pipeline complete for run %s", p.store.RunID)
	return ctx.Err()
}

// Records returns a snapshot of every registered agent's record.
func (p *Pipeline) Records() []agent.Record {
	records := make([]agent.Record, 0, len(p.runners))
	for _, r := range p.runners {
		records = append(records, r.Record())
	}
	return records
}

package ai

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// ErrUnknownProvider is returned by Resolve for a brain name it cannot serve.
var ErrUnknownProvider = errors.New("ai: unknown decision provider")

// Brain name forms accepted by Resolve.
const (
	BrainInternal = "internal"
	BrainCPU      = "cpu"
	BrainLLM      = "llm"
	luaPrefix     = "lua:"
	planPrefix    = "plan:"
)

// ScriptHost loads and runs Lua strategies.
type ScriptHost interface {
	ScriptCaller
	Has(name string) bool
	LoadStrategy(name, path string, instLimit int) error
}

// Registry resolves brain names to decision providers and indexes game-plan
// Planners by domain ID.
//
// Invariant: each domain ID is registered at most once.
type Registry struct {
	mu        sync.Mutex
	catalog   *technique.Catalog
	scripts   ScriptHost
	instLimit int
	logger    *zap.Logger
	planners  map[string]*Planner

	// NewLLM builds the "llm" brain. nil = "llm" is not available.
	NewLLM func() bout.DecisionProvider
}

// NewRegistry returns an empty Registry. scripts may be nil, in which case
// Lua brains and Lua plan preconditions are unavailable.
func NewRegistry(catalog *technique.Catalog, scripts ScriptHost, instLimit int, logger *zap.Logger) *Registry {
	if catalog == nil {
		catalog = technique.MustCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		catalog:   catalog,
		scripts:   scripts,
		instLimit: instLimit,
		logger:    logger,
		planners:  make(map[string]*Planner),
	}
}

// Register creates and stores a Planner for domain.
//
// Precondition: domain must not be nil.
// Postcondition: returns error on domain ID collision.
func (r *Registry) Register(domain *Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(domain)
}

func (r *Registry) register(domain *Domain) error {
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai.Registry: domain %q already registered", domain.ID)
	}
	if err := domain.CheckTechniques(r.catalog); err != nil {
		return err
	}
	var caller ScriptCaller
	if domain.Script != "" {
		if r.scripts == nil {
			return fmt.Errorf("ai.Registry: domain %q needs scripting", domain.ID)
		}
		if err := r.scripts.LoadStrategy(domain.ID, domain.Script, r.instLimit); err != nil {
			return err
		}
		caller = r.scripts
	}
	r.planners[domain.ID] = NewPlanner(domain, caller, domain.ID)
	return nil
}

// PlannerFor returns the Planner for domainID, or false if not registered.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.planners[domainID]
	return p, ok
}

// Resolve maps a brain name to a provider:
//
//	"" or "internal"  nil: the engine's own weighted pick
//	"cpu"             Heuristic
//	"llm"             the NewLLM brain
//	"lua:<path>"      Script over the strategy file or directory at path
//	"plan:<path>"     Planner over the HTN game plan file at path
func (r *Registry) Resolve(brain string) (bout.DecisionProvider, error) {
	brain = strings.TrimSpace(brain)
	switch {
	case brain == "" || strings.EqualFold(brain, BrainInternal):
		return nil, nil
	case strings.EqualFold(brain, BrainCPU):
		return NewHeuristic(r.catalog), nil
	case strings.EqualFold(brain, BrainLLM):
		if r.NewLLM == nil {
			return nil, fmt.Errorf("%w: %q is not configured", ErrUnknownProvider, brain)
		}
		return r.NewLLM(), nil
	case strings.HasPrefix(brain, luaPrefix):
		return r.resolveScript(strings.TrimPrefix(brain, luaPrefix))
	case strings.HasPrefix(brain, planPrefix):
		return r.resolvePlan(strings.TrimPrefix(brain, planPrefix))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, brain)
	}
}

func (r *Registry) resolveScript(path string) (bout.DecisionProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty lua path", ErrUnknownProvider)
	}
	if r.scripts == nil {
		return nil, fmt.Errorf("%w: scripting is not configured", ErrUnknownProvider)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.scripts.Has(path) {
		if err := r.scripts.LoadStrategy(path, path, r.instLimit); err != nil {
			return nil, err
		}
		r.logger.Info("strategy script loaded", zap.String("path", path))
	}
	return NewScript(r.scripts, path), nil
}

func (r *Registry) resolvePlan(path string) (bout.DecisionProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty plan path", ErrUnknownProvider)
	}
	domain, err := LoadDomain(path)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.planners[domain.ID]; ok {
		return p, nil
	}
	if err := r.register(domain); err != nil {
		return nil, err
	}
	r.logger.Info("game plan loaded", zap.String("plan", domain.ID), zap.String("path", path))
	return r.planners[domain.ID], nil
}

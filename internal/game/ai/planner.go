package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// ErrNoPlan is returned by Planner.Decide when no planned technique is legal
// from the actor's position.
var ErrNoPlan = errors.New("ai: game plan produced no legal technique")

// ScriptCaller evaluates Lua hooks on behalf of planners and scripts.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given strategy's VM.
	// Returns (nil, nil) if the function is not defined.
	CallHook(ctx context.Context, strategy, hook string, args ...any) (any, error)
}

// Planner evaluates an HTN game plan for one fighter and produces an ordered
// list of techniques to try.
//
// Invariant: domain must not be nil. caller may be nil when the plan uses
// only built-in conditions.
type Planner struct {
	domain   *Domain
	caller   ScriptCaller
	strategy string
}

// NewPlanner constructs a Planner. Lua preconditions run in the strategy VM
// named strategy.
//
// Precondition: domain must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, strategy string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	return &Planner{domain: domain, caller: caller, strategy: strategy}
}

// Domain returns the plan the planner evaluates.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against req and returns technique names in
// plan order.
//
// Postcondition: returns a non-nil slice (may be empty); Lua failures are
// treated as precondition-false.
func (p *Planner) Plan(ctx context.Context, req bout.DecisionRequest) []string {
	taskQueue := []string{rootTask}
	result := []string{}

	const maxDepth = 32
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, op.Technique)
			continue
		}

		method := p.findApplicableMethod(ctx, current, req)
		if method == nil {
			continue
		}
		taskQueue = append(append([]string(nil), method.Subtasks...), taskQueue...)
	}
	return result
}

// Decide returns the first planned technique that is legal for req.
func (p *Planner) Decide(ctx context.Context, req bout.DecisionRequest) (string, error) {
	for _, name := range p.Plan(ctx, req) {
		for _, legal := range req.Legal {
			if strings.EqualFold(name, legal) {
				return legal, nil
			}
		}
	}
	return "", fmt.Errorf("%w: plan %q", ErrNoPlan, p.domain.ID)
}

// findApplicableMethod returns the first Method for taskID whose precondition
// passes, or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always passes.
func (p *Planner) findApplicableMethod(ctx context.Context, taskID string, req bout.DecisionRequest) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if p.holds(ctx, m.Precondition, req) {
			return m
		}
	}
	return nil
}

func (p *Planner) holds(ctx context.Context, precondition string, req bout.DecisionRequest) bool {
	if precondition == "" {
		return true
	}
	name, negate := strings.CutPrefix(precondition, "!")
	return p.evaluate(ctx, name, req) != negate
}

func (p *Planner) evaluate(ctx context.Context, name string, req bout.DecisionRequest) bool {
	if cond, ok := conditions[name]; ok {
		return cond(req)
	}
	if p.caller == nil {
		return false
	}
	tbl, err := RequestTable(req)
	if err != nil {
		return false
	}
	val, err := p.caller.CallHook(ctx, p.strategy, name, tbl)
	if err != nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

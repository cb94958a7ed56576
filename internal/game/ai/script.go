package ai

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// ChooseHook is the Lua global a strategy script defines to pick a technique.
const ChooseHook = "choose_technique"

// Script asks a Lua strategy for each decision. The strategy's
// choose_technique(ctx) receives the request as a table and returns a
// technique name.
type Script struct {
	caller   ScriptCaller
	strategy string
}

// NewScript returns a Script that calls into the named strategy VM.
//
// Precondition: caller must not be nil.
func NewScript(caller ScriptCaller, strategy string) *Script {
	if caller == nil {
		panic("ai.NewScript: caller must not be nil")
	}
	return &Script{caller: caller, strategy: strategy}
}

// Decide calls choose_technique and returns its string result.
func (s *Script) Decide(ctx context.Context, req bout.DecisionRequest) (string, error) {
	tbl, err := RequestTable(req)
	if err != nil {
		return "", err
	}
	ret, err := s.caller.CallHook(ctx, s.strategy, ChooseHook, tbl)
	if err != nil {
		return "", err
	}
	name, ok := ret.(string)
	if !ok || name == "" {
		return "", fmt.Errorf("ai: strategy %q %s returned %v, want a technique name", s.strategy, ChooseHook, ret)
	}
	return name, nil
}

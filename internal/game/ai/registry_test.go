package ai_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

func TestRegistry_Register_And_PlannerFor(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	if err := reg.Register(pressureDomain()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	planner, ok := reg.PlannerFor("pressure")
	if !ok || planner == nil {
		t.Fatal("expected planner for pressure")
	}
}

func TestRegistry_Register_CollisionError(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	_ = reg.Register(pressureDomain())
	if err := reg.Register(pressureDomain()); err == nil {
		t.Fatal("expected collision error on second Register")
	}
}

func TestRegistry_Register_ScriptWithoutHost(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	d := pressureDomain()
	d.Script = "pressure.lua"
	if err := reg.Register(d); err == nil {
		t.Fatal("expected error when a plan needs scripting")
	}
}

func TestRegistry_PlannerFor_NotFound(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	if _, ok := reg.PlannerFor("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestRegistry_Resolve_Builtins(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	for _, brain := range []string{"", "internal", " Internal "} {
		p, err := reg.Resolve(brain)
		if err != nil || p != nil {
			t.Fatalf("Resolve(%q): expected nil provider, got %v (%v)", brain, p, err)
		}
	}
	for _, brain := range []string{"cpu", "CPU"} {
		p, err := reg.Resolve(brain)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", brain, err)
		}
		if _, ok := p.(*ai.Heuristic); !ok {
			t.Fatalf("Resolve(%q): expected *ai.Heuristic, got %T", brain, p)
		}
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	for _, brain := range []string{"bogus", "llm", "lua:x.lua", "plan:"} {
		if _, err := reg.Resolve(brain); !errors.Is(err, ai.ErrUnknownProvider) {
			t.Fatalf("Resolve(%q): expected ErrUnknownProvider, got %v", brain, err)
		}
	}
}

func TestRegistry_Resolve_LLM(t *testing.T) {
	reg := ai.NewRegistry(nil, nil, 0, nil)
	want := bout.DecisionFunc(func(context.Context, bout.DecisionRequest) (string, error) { return "Jab", nil })
	reg.NewLLM = func() bout.DecisionProvider { return want }
	p, err := reg.Resolve("llm")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	name, _ := p.Decide(context.Background(), request(technique.Standing))
	if name != "Jab" {
		t.Fatalf("expected the configured llm provider, got %q", name)
	}
}

func TestRegistry_Resolve_Lua(t *testing.T) {
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)
	path := writeStrategy(t, counterStrategy)

	p, err := reg.Resolve("lua:" + path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	req := request(technique.Standing)
	req.TargetHurt = true
	if name, err := p.Decide(context.Background(), req); err != nil || name != "Head Kick" {
		t.Fatalf("expected Head Kick, got %q (%v)", name, err)
	}

	// A second resolve reuses the loaded VM.
	if _, err := reg.Resolve("lua:" + path); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
}

func TestRegistry_Resolve_Plan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pressure.yaml"), []byte(pressurePlan), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pressure.lua"), []byte(`function never() return false end`), 0600); err != nil {
		t.Fatal(err)
	}
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)

	p, err := reg.Resolve("plan:" + filepath.Join(dir, "pressure.yaml"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	name, err := p.Decide(context.Background(), request(technique.Standing))
	if err != nil || name != "Jab" {
		t.Fatalf("expected Jab, got %q (%v)", name, err)
	}

	again, err := reg.Resolve("plan:" + filepath.Join(dir, "pressure.yaml"))
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if again != p {
		t.Fatal("expected the registered planner to be reused")
	}
}

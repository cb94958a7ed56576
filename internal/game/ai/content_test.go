package ai_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

const contentDir = "../../../content"

func TestContent_PlansRegister(t *testing.T) {
	domains, err := ai.LoadDomains(filepath.Join(contentDir, "plans"))
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) == 0 {
		t.Fatal("expected at least one shipped game plan")
	}
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)
	for _, d := range domains {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register %s: %v", d.ID, err)
		}
	}
}

func TestContent_SmotherPlanFromBottom(t *testing.T) {
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)
	p, err := reg.Resolve("plan:" + filepath.Join(contentDir, "plans", "smother.yaml"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	req := request(technique.GroundBottom)
	got, err := p.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got != "Stand Up" && got != "Upkick" && got != "Sweep" {
		t.Fatalf("expected an escape from bottom, got %q", got)
	}
}

func TestContent_SmotherPlanLuaPrecondition(t *testing.T) {
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)
	p, err := reg.Resolve("plan:" + filepath.Join(contentDir, "plans", "smother.yaml"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	req := request(technique.GroundTop)
	req.Opponent.Position = technique.GroundBottom
	req.Opponent.Stamina = 10
	got, err := p.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got != "Rear Naked Choke" && got != "Arm Triangle" && got != "Armbar" {
		t.Fatalf("expected a submission when the opponent is gassed, got %q", got)
	}
}

func TestContent_CounterStrikerScript(t *testing.T) {
	reg := ai.NewRegistry(nil, newScripts(t), 0, nil)
	p, err := reg.Resolve("lua:" + filepath.Join(contentDir, "strategies", "counter_striker.lua"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, pos := range technique.Positions {
		req := request(pos)
		got, err := p.Decide(context.Background(), req)
		if err != nil {
			t.Fatalf("Decide from %s: %v", pos, err)
		}
		if !legal(req, got) {
			t.Fatalf("script chose %q, not legal from %s", got, pos)
		}
	}
}

func legal(req bout.DecisionRequest, name string) bool {
	for _, n := range req.Legal {
		if n == name {
			return true
		}
	}
	return false
}

package ai_test

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

func TestHeuristic_FinishesHurtOpponent(t *testing.T) {
	h := ai.NewHeuristic(nil)
	req := request(technique.Standing)
	req.TargetHurt = true
	name, err := h.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != "Head Kick" {
		t.Fatalf("expected the heaviest standing strike, got %q", name)
	}
}

func TestHeuristic_EscapesBottom(t *testing.T) {
	h := ai.NewHeuristic(nil)

	req := request(technique.GroundBottom)
	req.Self.Profile.GroundGame = 80
	name, err := h.Decide(context.Background(), req)
	if err != nil || name != "Sweep" {
		t.Fatalf("expected the better grappler to sweep, got %q (%v)", name, err)
	}

	req.Self.Profile.GroundGame = 30
	name, err = h.Decide(context.Background(), req)
	if err != nil || name != "Stand Up" {
		t.Fatalf("expected the worse grappler to stand up, got %q (%v)", name, err)
	}
}

func TestHeuristic_WrestlerShoots(t *testing.T) {
	h := ai.NewHeuristic(nil)
	req := request(technique.Standing)
	req.Self.Profile.Wrestling = 85
	name, err := h.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != "Single Leg Takedown" {
		t.Fatalf("expected the most accurate takedown, got %q", name)
	}
}

func TestHeuristic_TiredWrestlerDoesNotShoot(t *testing.T) {
	h := ai.NewHeuristic(nil)
	req := request(technique.Standing)
	req.Self.Profile.Wrestling = 85
	req.Tired = true
	name, err := h.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != "Jab" {
		t.Fatalf("expected the cheapest strike, got %q", name)
	}
}

func TestHeuristic_SubmissionHunterFromTop(t *testing.T) {
	h := ai.NewHeuristic(nil)
	c := technique.MustCatalog()
	req := request(technique.GroundTop)
	req.Self.Profile.SubmissionOffense = 90
	name, err := h.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	tech, ok := c.ByName(name)
	if !ok || tech.Type != technique.SubmissionAttempt {
		t.Fatalf("expected a submission, got %q", name)
	}
}

func TestHeuristic_GroundAndPound(t *testing.T) {
	h := ai.NewHeuristic(nil)
	name, err := h.Decide(context.Background(), request(technique.GroundTop))
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != "Ground Elbow" {
		t.Fatalf("expected the best expected-damage ground strike, got %q", name)
	}
}

func TestHeuristic_DefaultsToJab(t *testing.T) {
	h := ai.NewHeuristic(nil)
	name, err := h.Decide(context.Background(), request(technique.Standing))
	if err != nil || name != "Jab" {
		t.Fatalf("expected Jab, got %q (%v)", name, err)
	}
}

func TestHeuristic_NoLegalTechnique(t *testing.T) {
	h := ai.NewHeuristic(nil)
	req := request(technique.Standing)
	req.Legal = []string{"Hadouken"}
	if _, err := h.Decide(context.Background(), req); !errors.Is(err, ai.ErrNoLegalTechnique) {
		t.Fatalf("expected ErrNoLegalTechnique, got %v", err)
	}
}

func TestProperty_Heuristic_AlwaysLegal(t *testing.T) {
	h := ai.NewHeuristic(nil)
	rapid.Check(t, func(rt *rapid.T) {
		pos := rapid.SampledFrom(technique.Positions).Draw(rt, "position")
		req := request(pos)
		req.TargetHurt = rapid.Bool().Draw(rt, "hurt")
		req.Tired = rapid.Bool().Draw(rt, "tired")
		req.Self.Profile.Wrestling = rapid.Float64Range(0, 100).Draw(rt, "wrestling")
		req.Self.Profile.SubmissionOffense = rapid.Float64Range(0, 100).Draw(rt, "subs")
		req.Self.Profile.GroundGame = rapid.Float64Range(0, 100).Draw(rt, "ground")

		name, err := h.Decide(context.Background(), req)
		if err != nil {
			rt.Fatalf("Decide: %v", err)
		}
		for _, l := range req.Legal {
			if l == name {
				return
			}
		}
		rt.Fatalf("Decide returned %q, not legal from %s", name, pos)
	})
}

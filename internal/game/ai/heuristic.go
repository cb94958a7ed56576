package ai

import (
	"context"
	"errors"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// ErrNoLegalTechnique is returned when a request lists no technique the
// catalog knows.
var ErrNoLegalTechnique = errors.New("ai: no legal technique")

// Heuristic margins.
const (
	wrestlingEdge  = 15
	submissionEdge = 0
)

// Heuristic is the "cpu" brain: a fixed rule list that never errors on a
// non-empty legal set.
type Heuristic struct {
	catalog *technique.Catalog
}

// NewHeuristic returns a Heuristic over c, or over the built-in catalog when
// c is nil.
func NewHeuristic(c *technique.Catalog) *Heuristic {
	if c == nil {
		c = technique.MustCatalog()
	}
	return &Heuristic{catalog: c}
}

// Decide applies, in order: finish a hurt opponent with the heaviest legal
// strike; escape the bottom (reversing when the better grappler); take the
// fight down when wrestling dominates; hunt submissions from top when
// submission offense dominates, otherwise ground-and-pound; conserve energy
// when tired; jab.
func (h *Heuristic) Decide(_ context.Context, req bout.DecisionRequest) (string, error) {
	legal := make([]*technique.Technique, 0, len(req.Legal))
	for _, name := range req.Legal {
		if t, ok := h.catalog.ByName(name); ok {
			legal = append(legal, t)
		}
	}
	if len(legal) == 0 {
		return "", ErrNoLegalTechnique
	}
	self, opp := req.Self.Profile, req.Opponent.Profile

	if req.TargetHurt {
		if t := best(legal, damaging, byDamage); t != nil {
			return t.Name, nil
		}
	}

	switch req.Self.Position {
	case technique.GroundBottom:
		reverse := self.GroundGame > opp.GroundGame
		t := best(legal, ofType(technique.PositionEscape), func(t *technique.Technique) float64 {
			if t.Reverses == reverse {
				return 1 + t.Accuracy
			}
			return t.Accuracy
		})
		if t != nil {
			return t.Name, nil
		}
	case technique.Standing:
		if !req.Tired && self.Wrestling >= self.Striking+wrestlingEdge {
			if t := best(legal, ofType(technique.Takedown), byAccuracy); t != nil {
				return t.Name, nil
			}
		}
	case technique.GroundTop:
		if self.SubmissionOffense > self.GroundGame+submissionEdge {
			if t := best(legal, ofType(technique.SubmissionAttempt), byAccuracy); t != nil {
				return t.Name, nil
			}
		}
		if t := best(legal, damaging, byExpectedDamage); t != nil {
			return t.Name, nil
		}
	}

	if req.Tired {
		if t := best(legal, damaging, func(t *technique.Technique) float64 { return -t.Stamina }); t != nil {
			return t.Name, nil
		}
	}
	for _, t := range legal {
		if t.Name == "Jab" {
			return t.Name, nil
		}
	}
	if t := best(legal, damaging, byExpectedDamage); t != nil {
		return t.Name, nil
	}
	return legal[0].Name, nil
}

func damaging(t *technique.Technique) bool { return t.Type.Damaging() }

func ofType(a technique.ActionType) func(*technique.Technique) bool {
	return func(t *technique.Technique) bool { return t.Type == a }
}

func byDamage(t *technique.Technique) float64         { return t.Damage }
func byAccuracy(t *technique.Technique) float64       { return t.Accuracy }
func byExpectedDamage(t *technique.Technique) float64 { return t.Damage * t.Accuracy }

// best returns the highest scoring technique that passes keep. Ties go to
// the earlier entry.
func best(ts []*technique.Technique, keep func(*technique.Technique) bool, score func(*technique.Technique) float64) *technique.Technique {
	var top *technique.Technique
	var topScore float64
	for _, t := range ts {
		if !keep(t) {
			continue
		}
		if s := score(t); top == nil || s > topScore {
			top, topScore = t, s
		}
	}
	return top
}

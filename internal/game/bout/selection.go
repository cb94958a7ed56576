package bout

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// offense returns the actor attribute that drives a technique.
func offense(t *technique.Technique, p fighter.Profile) float64 {
	switch t.Type {
	case technique.Takedown:
		return p.Wrestling
	case technique.SubmissionAttempt:
		return p.SubmissionOffense
	case technique.GroundPound, technique.PositionAdvance, technique.PositionEscape:
		return p.GroundGame
	case technique.ClinchEntry, technique.BreakClinch:
		return p.ClinchControl
	}
	if t.Limb == technique.LimbKick {
		return (p.Striking + p.KickPower) / 2
	}
	return p.Striking
}

// weight scores one legal technique for the actor in the current context.
//
// Postcondition: returns a value > 0.
func (e *Engine) weight(t *technique.Technique, self, opp FighterState) float64 {
	w := max(offense(t, self.Profile), 1)

	if self.Profile.FightIQ > e.tuning.FightIQThreshold {
		w *= 1 + t.Accuracy*t.Accuracy
	}
	if t.Type.Damaging() {
		if opp.Health < e.tuning.FinishingHealth {
			w *= 2
		}
		if self.Health < opp.Health {
			w *= 1 + self.Profile.Heart/200
		}
		if self.Position == technique.GroundTop && opp.Position == technique.GroundBottom {
			w *= 1.5
		}
	}
	if self.Stamina < e.tuning.LowStamina && t.Stamina > e.tuning.ExpensiveStamina {
		w *= 0.2
	}
	return w
}

// pickInternal draws a technique from the weighted legal set.
//
// Precondition: legal is non-empty.
func (e *Engine) pickInternal(legal []*technique.Technique, self, opp FighterState) *technique.Technique {
	candidates := make([]dice.Weighted[*technique.Technique], len(legal))
	for i, t := range legal {
		candidates[i] = dice.Weighted[*technique.Technique]{Item: t, Weight: e.weight(t, self, opp)}
	}
	t, ok := dice.WeightedChoice(e.roller.Source(), candidates)
	if !ok {
		return legal[e.roller.Intn("technique fallback", len(legal))]
	}
	return t
}

// selectTechnique chooses the actor's technique, consulting the side's
// decision provider first when one is registered.
//
// Postcondition: the returned technique is legal from the actor's position;
// provided reports whether the provider's answer was used.
func (e *Engine) selectTechnique(ctx context.Context, actor Side, fighters [2]FighterState, remaining int) (t *technique.Technique, provided bool) {
	self, opp := fighters[actor], fighters[actor.Opponent()]
	legal := e.catalog.Legal(self.Position)

	if p := e.providers[actor]; p != nil {
		req := e.decisionRequest(actor, fighters, remaining, legal)
		name, err := e.askProvider(ctx, p, req)
		switch {
		case err != nil:
			e.logger.Warn("decision provider failed; using internal selection",
				zap.String("fighter", self.Profile.Name),
				zap.Error(err),
			)
		default:
			if chosen, ok := e.catalog.Resolve(name); ok && chosen.LegalFrom(self.Position) {
				return chosen, true
			}
			e.logger.Warn("decision provider chose an unusable technique; using internal selection",
				zap.String("fighter", self.Profile.Name),
				zap.String("technique", name),
				zap.String("position", string(self.Position)),
			)
		}
	}
	return e.pickInternal(legal, self, opp), false
}

// pickActor draws the side that takes the initiative, weighted by aggression.
func (e *Engine) pickActor(fighters [2]FighterState) Side {
	side, ok := dice.WeightedChoice(e.roller.Source(), []dice.Weighted[Side]{
		{Item: SideA, Weight: fighters[SideA].Profile.Aggression},
		{Item: SideB, Weight: fighters[SideB].Profile.Aggression},
	})
	if !ok {
		return Side(e.roller.Intn("initiative", 2))
	}
	return side
}

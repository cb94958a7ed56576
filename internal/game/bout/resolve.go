package bout

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// evasion returns the target attribute that resists a technique.
func evasion(t *technique.Technique, p fighter.Profile) float64 {
	switch t.Type {
	case technique.Takedown:
		return p.TakedownDefense
	case technique.SubmissionAttempt:
		return p.SubmissionDefense
	case technique.GroundPound, technique.PositionAdvance, technique.PositionEscape:
		return p.GroundGame
	case technique.ClinchEntry, technique.BreakClinch:
		return p.ClinchControl
	}
	return 0.75*p.HeadMovement + 0.25*p.Footwork
}

// accuracy returns the effective chance that t lands.
//
// Postcondition: result is in [0, AccuracyCeiling].
func (e *Engine) accuracy(t *technique.Technique, self, opp FighterState) float64 {
	acc := t.Accuracy * (offense(t, self.Profile) / 50) * (1 - evasion(t, opp.Profile)/200)
	acc *= 0.5 + 0.5*self.Stamina/100
	if t.Type.Damaging() {
		acc *= 1 + 0.3*(1-opp.Health/100)
	}
	return clamp(acc, 0, e.tuning.AccuracyCeiling)
}

// staminaCost scales a technique's stamina cost by the actor's cardio.
func staminaCost(t *technique.Technique, p fighter.Profile) float64 {
	return math.Max(0, t.Stamina*(1.5-p.Cardio/100))
}

// outcome is the result of resolving one technique, before it is applied.
type outcome struct {
	success   bool
	damage    float64
	stamina   float64
	critical  bool
	knockdown bool
	cut       bool
	submitted bool
	impact    ImpactTier
}

// resolve rolls hit or miss, damage, and the follow-up chances for t.
func (e *Engine) resolve(t *technique.Technique, self, opp FighterState) outcome {
	cost := staminaCost(t, self.Profile)
	if !e.roller.Chance("hit "+t.Name, e.accuracy(t, self, opp)) {
		return outcome{stamina: round1(cost / 2)}
	}
	out := outcome{success: true, stamina: round1(cost)}

	switch {
	case t.Type.Damaging():
		dmg := t.Damage * (0.5 + offense(t, self.Profile)/100)
		if t.Limb == technique.LimbPunch {
			dmg *= 1 + self.Profile.PunchSpeed/400
		}
		if e.roller.Chance("critical", e.tuning.CritChance) {
			out.critical = true
			dmg *= e.tuning.CritMultiplier
		}
		dmg *= 1 - opp.Profile.Chin/250
		dmg *= e.roller.Uniform("variance", 0.85, 1.15)
		out.damage = round1(math.Max(0, dmg))
		out.impact = TierFor(out.damage)
		if out.critical {
			out.impact = ImpactDevastating
		}
		if out.impact == ImpactDevastating && out.damage > e.tuning.KnockdownDamageThreshold {
			out.knockdown = e.roller.Chance("knockdown", e.tuning.KnockdownChance)
		}
		if out.impact.AtLeast(ImpactHeavy) {
			p := 0.08
			if t.Limb == technique.LimbElbow {
				p = 0.25
			}
			out.cut = e.roller.Chance("cut", p)
		}
	case t.Type == technique.Takedown:
		dmg := t.Damage * (0.5 + self.Profile.Wrestling/100) * e.roller.Uniform("variance", 0.85, 1.15)
		out.damage = round1(dmg)
		out.impact = TierFor(out.damage)
	case t.Type == technique.SubmissionAttempt:
		out.damage = round1(t.Damage * e.roller.Uniform("variance", 0.85, 1.15))
		out.impact = TierFor(out.damage)
		out.submitted = e.roller.Chance("tap", tapChance(self, opp))
	default:
		out.impact = ImpactLight
	}
	return out
}

// tapChance is the chance that a landed submission attempt finishes the bout.
//
// Postcondition: result is in [0.05, 0.9].
func tapChance(self, opp FighterState) float64 {
	p := 0.25 + (self.Profile.SubmissionOffense-opp.Profile.SubmissionDefense)/200 + 0.3*(1-opp.Health/100)
	return clamp(p, 0.05, 0.9)
}

// setPositions moves both fighters, clearing dominant-position flags for any
// fighter no longer on top.
func setPositions(self, opp *FighterState, sp, op technique.Position) {
	self.Position, opp.Position = sp, op
	for _, f := range []*FighterState{self, opp} {
		if f.Position != technique.GroundTop {
			f.Mount, f.BackControl = false, false
		}
	}
}

// apply mutates both fighters with a resolved outcome.
//
// Postcondition: 0 <= Health, Stamina <= 100 for both fighters.
func (e *Engine) apply(t *technique.Technique, out outcome, self, opp *FighterState) {
	self.Stamina = clamp(self.Stamina-out.stamina, 0, 100)
	switch t.Type {
	case technique.Takedown:
		self.TakedownsAttempted++
	case technique.SubmissionAttempt:
		self.SubmissionAttempts++
	}
	if t.Damage > 0 {
		self.StrikesThrown++
	}
	if !out.success {
		return
	}

	if out.damage > 0 {
		dealt := math.Min(out.damage, opp.Health)
		opp.Health = clamp(opp.Health-out.damage, 0, 100)
		self.DamageLanded += dealt
		self.TotalStrikes++
		if out.damage >= e.tuning.SignificantStrikeThreshold {
			self.SignificantStrikes++
		}
	}

	switch t.Type {
	case technique.Takedown:
		self.TakedownsLanded++
		setPositions(self, opp, technique.GroundTop, technique.GroundBottom)
	case technique.ClinchEntry:
		setPositions(self, opp, technique.Clinch, technique.Clinch)
	case technique.BreakClinch:
		setPositions(self, opp, technique.Standing, technique.Standing)
	case technique.PositionAdvance:
		if self.Mount {
			self.BackControl = true
		} else {
			self.Mount = true
		}
	case technique.PositionEscape:
		if t.Reverses {
			setPositions(self, opp, technique.GroundTop, technique.GroundBottom)
		} else {
			setPositions(self, opp, technique.Standing, technique.Standing)
		}
	}

	if out.knockdown {
		self.Knockdowns++
		if opp.Position == technique.Standing {
			setPositions(self, opp, technique.GroundTop, technique.GroundBottom)
		}
	}
	if out.cut {
		opp.Cuts++
	}
}

var missTemplates = []string{
	"%[1]s misses with the %[3]s.",
	"%[1]s whiffs on a %[3]s.",
	"%[2]s slips the %[3]s from %[1]s.",
	"%[2]s blocks %[1]s's %[3]s.",
}

// describe narrates a resolved action. self is the actor's state after the action.
func (e *Engine) describe(t *technique.Technique, out outcome, actor, target string, self FighterState) string {
	if !out.success {
		switch t.Type {
		case technique.SubmissionAttempt:
			return fmt.Sprintf("%s hunts for a %s but %s defends.", actor, t.Name, target)
		case technique.Takedown:
			return fmt.Sprintf("%s shoots for a %s but %s stuffs it.", actor, t.Name, target)
		}
		tmpl := missTemplates[e.roller.Intn("miss narrative", len(missTemplates))]
		return fmt.Sprintf(tmpl, actor, target, t.Name)
	}

	var desc string
	switch t.Type {
	case technique.Takedown:
		desc = fmt.Sprintf("%s takes %s down with a %s.", actor, target, t.Name)
	case technique.SubmissionAttempt:
		if out.submitted {
			desc = fmt.Sprintf("%s locks in the %s and %s taps!", actor, t.Name, target)
		} else {
			desc = fmt.Sprintf("%s sinks in a %s but %s survives.", actor, t.Name, target)
		}
	case technique.ClinchEntry:
		desc = fmt.Sprintf("%s ties up %s in the clinch.", actor, target)
	case technique.BreakClinch:
		desc = fmt.Sprintf("%s breaks free of the clinch.", actor)
	case technique.PositionAdvance:
		if self.BackControl {
			desc = fmt.Sprintf("%s takes the back of %s.", actor, target)
		} else {
			desc = fmt.Sprintf("%s passes into full mount on %s.", actor, target)
		}
	case technique.PositionEscape:
		if t.Reverses {
			desc = fmt.Sprintf("%s sweeps %s and comes up on top.", actor, target)
		} else {
			desc = fmt.Sprintf("%s scrambles back to the feet.", actor)
		}
	default:
		desc = strikeDescription(out.impact, actor, target, t.Name)
	}
	if out.critical {
		desc = "Critical! " + desc
	}
	if out.knockdown {
		desc += fmt.Sprintf(" %s goes down!", target)
	}
	if out.cut {
		desc += fmt.Sprintf(" %s is cut!", target)
	}
	return desc
}

func strikeDescription(impact ImpactTier, actor, target, name string) string {
	switch impact {
	case ImpactDevastating:
		return fmt.Sprintf("%s DEVASTATES %s with a %s!", actor, target, name)
	case ImpactHeavy:
		return fmt.Sprintf("%s rocks %s with a heavy %s.", actor, target, name)
	case ImpactModerate:
		return fmt.Sprintf("%s connects with a solid %s on %s.", actor, name, target)
	default:
		return fmt.Sprintf("%s lands a light %s on %s.", actor, name, target)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

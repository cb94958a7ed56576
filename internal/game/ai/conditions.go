package ai

import (
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// lateRoundSeconds is the time remaining under which "late_round" holds.
const lateRoundSeconds = 60

// conditions are the built-in method preconditions. Any other precondition
// name is evaluated as a Lua hook.
var conditions = map[string]func(bout.DecisionRequest) bool{
	"winning":     func(r bout.DecisionRequest) bool { return r.Winning },
	"tired":       func(r bout.DecisionRequest) bool { return r.Tired },
	"target_hurt": func(r bout.DecisionRequest) bool { return r.TargetHurt },
	"standing":    func(r bout.DecisionRequest) bool { return r.Self.Position == technique.Standing },
	"clinched":    func(r bout.DecisionRequest) bool { return r.Self.Position == technique.Clinch },
	"on_top":      func(r bout.DecisionRequest) bool { return r.Self.Position == technique.GroundTop },
	"on_bottom":   func(r bout.DecisionRequest) bool { return r.Self.Position == technique.GroundBottom },
	"late_round":  func(r bout.DecisionRequest) bool { return r.TimeRemaining < lateRoundSeconds },
	"outlanded": func(r bout.DecisionRequest) bool {
		return r.Opponent.DamageLanded > r.Self.DamageLanded
	},
	"better_wrestler": func(r bout.DecisionRequest) bool {
		return r.Self.Profile.Wrestling > r.Opponent.Profile.TakedownDefense
	},
	"better_striker": func(r bout.DecisionRequest) bool {
		return r.Self.Profile.Striking > r.Opponent.Profile.Striking
	},
	"better_grappler": func(r bout.DecisionRequest) bool {
		return r.Self.Profile.GroundGame > r.Opponent.Profile.GroundGame
	},
}

// Conditions returns the names of the built-in preconditions.
func Conditions() []string {
	out := make([]string, 0, len(conditions))
	for name := range conditions {
		out = append(out, name)
	}
	return out
}

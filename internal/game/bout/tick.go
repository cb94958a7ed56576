package bout

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// actionProbability is the chance that a tick produces an action.
func (e *Engine) actionProbability(fighters [2]FighterState) float64 {
	mean := (fighters[SideA].Profile.Aggression + fighters[SideB].Profile.Aggression) / 2
	return clamp(e.tuning.ActionBaseProbability+mean, 0, 1)
}

// advance computes one tick on copies of the fighters and commits the result
// in a single critical section.
//
// Precondition: tickMu is held and the bout is not complete.
func (e *Engine) advance(ctx context.Context) events {
	if e.state.Rounds[len(e.state.Rounds)-1].TimeRemaining <= 0 {
		return e.endRound()
	}
	remaining := e.state.Rounds[len(e.state.Rounds)-1].TimeRemaining - 1

	fighters := e.state.Fighters
	for _, s := range Sides {
		f := &fighters[s]
		f.Stamina = math.Min(100, f.Stamina+f.Profile.Recovery/100*e.tuning.StaminaRecoveryRate)
	}

	var (
		action *Action
		winner = NoSide
		method = MethodNone
	)
	if e.roller.Chance("action", e.actionProbability(fighters)) {
		a, w, m := e.act(ctx, &fighters, remaining)
		action, winner, method = &a, w, m
	}
	if method == MethodNone &&
		fighters[SideA].Stamina < e.tuning.ExhaustionThreshold &&
		fighters[SideB].Stamina < e.tuning.ExhaustionThreshold {
		winner, method = exhaustionResult(fighters[SideA], fighters[SideB])
		e.logger.Info("both fighters exhausted")
	}

	e.mu.Lock()
	e.state.Fighters = fighters
	r := &e.state.Rounds[len(e.state.Rounds)-1]
	r.TimeRemaining = remaining
	ev := events{action: action}
	if action != nil {
		r.Actions = append(r.Actions, *action)
		e.state.Log = append(e.state.Log, action.Description)
	}
	if method != MethodNone {
		r.Active = false
		e.complete(winner, method, remaining)
		final := e.state.Clone()
		ev.fightEnd = &final
	}
	e.mu.Unlock()

	if action != nil {
		e.logger.Debug("action",
			zap.Int("round", action.Round),
			zap.Int("time_remaining", action.TimeRemaining),
			zap.String("actor", action.ActorName),
			zap.String("technique", action.Technique),
			zap.Bool("success", action.Success),
			zap.Float64("damage", action.Damage),
		)
	}
	if ev.fightEnd != nil {
		e.logFinish(ev.fightEnd)
	}
	return ev
}

// act selects, resolves, and applies one technique for the side that wins the
// initiative. A decisive method is returned when the action ends the bout.
func (e *Engine) act(ctx context.Context, fighters *[2]FighterState, remaining int) (Action, Side, Method) {
	actor := e.pickActor(*fighters)
	target := actor.Opponent()
	position := fighters[actor].Position
	targetPosition := fighters[target].Position

	t, provided := e.selectTechnique(ctx, actor, *fighters, remaining)
	out := e.resolve(t, fighters[actor], fighters[target])
	self, opp := &fighters[actor], &fighters[target]
	e.apply(t, out, self, opp)

	action := Action{
		Timestamp:     e.now(),
		Round:         e.state.CurrentRound,
		TimeRemaining: remaining,
		Actor:         actor,
		Target:        target,
		ActorName:     self.Profile.Name,
		TargetName:    opp.Profile.Name,
		Technique:     t.Name,
		Type:          t.Type,
		Position:      position,
		Success:       out.success,
		Damage:        out.damage,
		Stamina:       out.stamina,
		Critical:      out.critical,
		Knockdown:     out.knockdown,
		Cut:           out.cut,
		Submitted:     out.submitted,
		Impact:        out.impact,
		Description:   e.describe(t, out, self.Profile.Name, opp.Profile.Name, *self),
		Provided:      provided,
	}

	switch {
	case opp.Health <= 0:
		if targetPosition.Grounded() {
			return action, actor, MethodTKO
		}
		return action, actor, MethodKO
	case out.submitted:
		return action, actor, MethodSubmission
	case opp.Cuts >= e.tuning.CutsForStoppage:
		return action, actor, MethodTKO
	}
	return action, NoSide, MethodNone
}

// endRound closes the current round. After the final round the bout goes to
// the scorecards; otherwise both fighters recover and the next round opens.
func (e *Engine) endRound() events {
	fighters := e.state.Fighters
	final := e.state.CurrentRound >= e.tuning.Rounds

	var (
		winner = NoSide
		method = MethodNone
		scores Scores
	)
	if final {
		winner, method, scores = ScoreDecision(fighters[SideA], fighters[SideB])
	} else {
		for _, s := range Sides {
			f := &fighters[s]
			f.Health = math.Min(100, f.Health+f.Profile.Recovery*e.tuning.BetweenRoundRegen)
			f.Stamina = 100
		}
		setPositions(&fighters[SideA], &fighters[SideB], technique.Standing, technique.Standing)
	}

	e.mu.Lock()
	r := &e.state.Rounds[len(e.state.Rounds)-1]
	r.Active = false
	ended := r.clone()
	ev := events{roundEnd: &ended}
	e.state.Fighters = fighters
	if final {
		e.complete(winner, method, 0)
		state := e.state.Clone()
		ev.fightEnd = &state
	} else {
		e.state.CurrentRound++
		e.state.Rounds = append(e.state.Rounds, Round{
			Number:        e.state.CurrentRound,
			TimeRemaining: e.tuning.RoundSeconds,
			Active:        true,
		})
	}
	e.mu.Unlock()

	e.logger.Info("round ended", zap.Int("round", ended.Number), zap.Int("actions", len(ended.Actions)))
	if final {
		e.logger.Info("scorecards",
			zap.Float64("score_a", scores[SideA]),
			zap.Float64("score_b", scores[SideB]),
		)
		e.logFinish(ev.fightEnd)
	}
	return ev
}

func (e *Engine) logFinish(s *State) {
	e.logger.Info("bout finished",
		zap.String("winner", s.Winner),
		zap.String("method", string(s.Method)),
		zap.Int("end_round", s.EndRound),
		zap.Int("end_time_remaining", s.EndTimeRemaining),
	)
}

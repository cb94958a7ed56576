package bout

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// DecisionRequest is the context handed to an external decision provider when
// its fighter has the initiative.
type DecisionRequest struct {
	BoutID        string       `json:"bout_id"`
	Actor         Side         `json:"actor"`
	Target        Side         `json:"target"`
	Round         int          `json:"round"`
	TimeRemaining int          `json:"time_remaining"`
	Self          FighterState `json:"self"`
	Opponent      FighterState `json:"opponent"`
	// Recent holds the descriptions of the latest actions, oldest first.
	Recent []string `json:"recent"`
	// Legal names every technique the actor may attempt from its position.
	Legal []string `json:"legal"`

	Winning    bool `json:"winning"`
	Tired      bool `json:"tired"`
	TargetHurt bool `json:"target_hurt"`
}

// DecisionProvider chooses a technique by name for one side of a bout.
// An error, a timeout, or a name that is not legal from the actor's position
// makes the engine fall back to its own weighted pick.
type DecisionProvider interface {
	Decide(ctx context.Context, req DecisionRequest) (string, error)
}

// DecisionFunc adapts a function to DecisionProvider.
type DecisionFunc func(ctx context.Context, req DecisionRequest) (string, error)

// Decide calls f.
func (f DecisionFunc) Decide(ctx context.Context, req DecisionRequest) (string, error) {
	return f(ctx, req)
}

// Callbacks are invoked synchronously by the engine after each state commit.
// Any of them may be nil.
type Callbacks struct {
	OnAction   func(Action)
	OnRoundEnd func(Round)
	OnFightEnd func(State)
}

const recentActions = 5

func (e *Engine) decisionRequest(actor Side, fighters [2]FighterState, remaining int, legal []*technique.Technique) DecisionRequest {
	self, opp := fighters[actor], fighters[actor.Opponent()]
	log := e.state.Log
	if len(log) > recentActions {
		log = log[len(log)-recentActions:]
	}
	return DecisionRequest{
		BoutID:        e.state.ID,
		Actor:         actor,
		Target:        actor.Opponent(),
		Round:         e.state.CurrentRound,
		TimeRemaining: remaining,
		Self:          self,
		Opponent:      opp,
		Recent:        append([]string(nil), log...),
		Legal:         technique.Names(legal),
		Winning:       self.Health > opp.Health,
		Tired:         self.Stamina < e.tuning.LowStamina,
		TargetHurt:    opp.Health < e.tuning.FinishingHealth,
	}
}

type decision struct {
	name string
	err  error
}

// askProvider races p against the decision timeout. A panicking provider is
// reported as an error.
func (e *Engine) askProvider(ctx context.Context, p DecisionProvider, req DecisionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.tuning.DecisionTimeout)
	defer cancel()

	ch := make(chan decision, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- decision{err: fmt.Errorf("decision provider panicked: %v", r)}
			}
		}()
		name, err := p.Decide(ctx, req)
		ch <- decision{name: name, err: err}
	}()

	select {
	case d := <-ch:
		return d.name, d.err
	case <-ctx.Done():
		return "", fmt.Errorf("decision provider: %w", ctx.Err())
	}
}

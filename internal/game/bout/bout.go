// Package bout implements the tick-driven fight engine: positions, technique
// selection, strike resolution, rounds, and stoppages for one two-fighter bout.
package bout

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// Side identifies one corner of a bout.
type Side int

const (
	// NoSide is the winner side of a draw or an unfinished bout.
	NoSide Side = -1
	SideA  Side = 0
	SideB  Side = 1
)

// Sides lists both corners in order.
var Sides = [2]Side{SideA, SideB}

// Opponent returns the other corner.
//
// Precondition: s is SideA or SideB.
func (s Side) Opponent() Side { return 1 - s }

// String returns "A", "B", or "" for NoSide.
func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return ""
	}
}

// MarshalText encodes the side as "A", "B", or "".
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "A", "B", or "".
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "A", "a":
		*s = SideA
	case "B", "b":
		*s = SideB
	case "":
		*s = NoSide
	default:
		return fmt.Errorf("bout: unknown side %q", b)
	}
	return nil
}

// Method is how a bout was decided.
type Method string

const (
	// MethodNone marks a bout that has not finished or was stopped from outside.
	MethodNone       Method = ""
	MethodKO         Method = "KO"
	MethodTKO        Method = "TKO"
	MethodSubmission Method = "SUB"
	MethodDecision   Method = "DEC"
	MethodDraw       Method = "DRAW"
)

// Decisive reports whether the method names a winner.
func (m Method) Decisive() bool {
	switch m {
	case MethodKO, MethodTKO, MethodSubmission, MethodDecision:
		return true
	default:
		return false
	}
}

// ImpactTier grades how hard a landed technique hit.
type ImpactTier string

const (
	ImpactNone        ImpactTier = ""
	ImpactLight       ImpactTier = "light"
	ImpactModerate    ImpactTier = "moderate"
	ImpactHeavy       ImpactTier = "heavy"
	ImpactDevastating ImpactTier = "devastating"
)

// TierFor grades final damage.
//
// Postcondition: < 5 light, < 9 moderate, < 13 heavy, otherwise devastating.
func TierFor(damage float64) ImpactTier {
	switch {
	case damage < 5:
		return ImpactLight
	case damage < 9:
		return ImpactModerate
	case damage < 13:
		return ImpactHeavy
	default:
		return ImpactDevastating
	}
}

// AtLeast reports whether t is at least as hard as other.
func (t ImpactTier) AtLeast(other ImpactTier) bool {
	return t.rank() >= other.rank()
}

func (t ImpactTier) rank() int {
	switch t {
	case ImpactLight:
		return 1
	case ImpactModerate:
		return 2
	case ImpactHeavy:
		return 3
	case ImpactDevastating:
		return 4
	default:
		return 0
	}
}

// FighterState is one fighter's mutable condition during a bout.
//
// Invariant: 0 <= Health <= 100 and 0 <= Stamina <= 100.
type FighterState struct {
	Profile  fighter.Profile    `json:"profile"`
	Health   float64            `json:"health"`
	Stamina  float64            `json:"stamina"`
	Position technique.Position `json:"position"`
	// Mount and BackControl are dominant ground positions held from the top.
	Mount       bool `json:"mount"`
	BackControl bool `json:"back_control"`

	Knockdowns         int     `json:"knockdowns"`
	TakedownsLanded    int     `json:"takedowns_landed"`
	TakedownsAttempted int     `json:"takedowns_attempted"`
	SignificantStrikes int     `json:"significant_strikes"`
	TotalStrikes       int     `json:"total_strikes"`
	StrikesThrown      int     `json:"strikes_thrown"`
	SubmissionAttempts int     `json:"submission_attempts"`
	Cuts               int     `json:"cuts"`
	DamageLanded       float64 `json:"damage_landed"`
}

func newFighterState(p fighter.Profile) FighterState {
	return FighterState{
		Profile:  p,
		Health:   100,
		Stamina:  100,
		Position: technique.Standing,
	}
}

// Action is one resolved technique. It is never modified once recorded.
type Action struct {
	Timestamp     time.Time            `json:"timestamp"`
	Round         int                  `json:"round"`
	TimeRemaining int                  `json:"time_remaining"`
	Actor         Side                 `json:"actor"`
	Target        Side                 `json:"target"`
	ActorName     string               `json:"actor_name"`
	TargetName    string               `json:"target_name"`
	Technique     string               `json:"technique"`
	Type          technique.ActionType `json:"type"`
	// Position is the actor's position when the technique was selected.
	Position    technique.Position `json:"position"`
	Success     bool               `json:"success"`
	Damage      float64            `json:"damage"`
	Stamina     float64            `json:"stamina"`
	Critical    bool               `json:"critical,omitempty"`
	Knockdown   bool               `json:"knockdown,omitempty"`
	Cut         bool               `json:"cut,omitempty"`
	Submitted   bool               `json:"submitted,omitempty"`
	Impact      ImpactTier         `json:"impact,omitempty"`
	Description string             `json:"description"`
	// Provided is true when an external decision provider chose the technique.
	Provided bool `json:"provided,omitempty"`
}

// Round is one scheduled round and the actions that happened in it.
type Round struct {
	Number        int      `json:"number"`
	TimeRemaining int      `json:"time_remaining"`
	Active        bool     `json:"active"`
	Actions       []Action `json:"actions"`
}

// State is a snapshot of a bout.
//
// Invariant: Complete is set once and never cleared; Winner is non-empty only
// when Method is decisive; len(Rounds) == CurrentRound.
type State struct {
	ID               string          `json:"id"`
	Fighters         [2]FighterState `json:"fighters"`
	CurrentRound     int             `json:"current_round"`
	Rounds           []Round         `json:"rounds"`
	Log              []string        `json:"log"`
	Complete         bool            `json:"complete"`
	Winner           string          `json:"winner,omitempty"`
	WinnerSide       Side            `json:"winner_side"`
	Method           Method          `json:"method,omitempty"`
	EndRound         int             `json:"end_round,omitempty"`
	EndTimeRemaining int             `json:"end_time_remaining,omitempty"`
}

// Fighter returns the state of the fighter in corner s.
func (s State) Fighter(side Side) FighterState { return s.Fighters[side] }

// Actions returns every action of the bout in order.
func (s State) Actions() []Action {
	var out []Action
	for _, r := range s.Rounds {
		out = append(out, r.Actions...)
	}
	return out
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	out.Rounds = make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		out.Rounds[i] = r.clone()
	}
	out.Log = append([]string(nil), s.Log...)
	return out
}

func (r Round) clone() Round {
	r.Actions = append([]Action(nil), r.Actions...)
	return r
}

// Scores holds both corners' decision scores, indexed by Side.
type Scores [2]float64

// DamageDealt is the damage attributed to actor: 100 minus the opponent's current health.
func DamageDealt(opponent FighterState) float64 {
	return 100 - opponent.Health
}

// ScoreDecision scores a bout that went the distance.
// Each side scores damage dealt + 10 per takedown landed + 2 per significant strike.
//
// Postcondition: returns (winner, MethodDecision) for the higher score,
// or (NoSide, MethodDraw) on an exact tie.
func ScoreDecision(a, b FighterState) (Side, Method, Scores) {
	scores := Scores{
		DamageDealt(b) + 10*float64(a.TakedownsLanded) + 2*float64(a.SignificantStrikes),
		DamageDealt(a) + 10*float64(b.TakedownsLanded) + 2*float64(b.SignificantStrikes),
	}
	switch {
	case scores[SideA] > scores[SideB]:
		return SideA, MethodDecision, scores
	case scores[SideB] > scores[SideA]:
		return SideB, MethodDecision, scores
	default:
		return NoSide, MethodDraw, scores
	}
}

// exhaustionResult decides an exhaustion stoppage by damage dealt.
func exhaustionResult(a, b FighterState) (Side, Method) {
	da, db := DamageDealt(b), DamageDealt(a)
	switch {
	case da > db:
		return SideA, MethodTKO
	case db > da:
		return SideB, MethodTKO
	default:
		return NoSide, MethodDraw
	}
}

// Package technique defines fight positions, action types, and the static
// technique catalog consulted by the fight engine.
package technique

import (
	"fmt"
)

// Position is the tactical state of a fighter within a bout.
type Position string

const (
	Standing     Position = "standing"
	Clinch       Position = "clinch"
	GroundTop    Position = "ground_top"
	GroundBottom Position = "ground_bottom"
)

// Positions lists every valid Position in declaration order.
var Positions = []Position{Standing, Clinch, GroundTop, GroundBottom}

// Valid reports whether p is one of the four known positions.
func (p Position) Valid() bool {
	switch p {
	case Standing, Clinch, GroundTop, GroundBottom:
		return true
	default:
		return false
	}
}

// Grounded reports whether p is a ground position.
func (p Position) Grounded() bool {
	return p == GroundTop || p == GroundBottom
}

// ActionType classifies what a technique does when it lands.
type ActionType string

const (
	Strike            ActionType = "strike"
	Takedown          ActionType = "takedown"
	ClinchEntry       ActionType = "clinch"
	BreakClinch       ActionType = "break_clinch"
	SubmissionAttempt ActionType = "submission_attempt"
	GroundPound       ActionType = "ground_pound"
	Elbow             ActionType = "elbow"
	Knee              ActionType = "knee"
	PositionAdvance   ActionType = "position_advance"
	PositionEscape    ActionType = "position_escape"
)

// Valid reports whether a is a known ActionType.
func (a ActionType) Valid() bool {
	switch a {
	case Strike, Takedown, ClinchEntry, BreakClinch, SubmissionAttempt,
		GroundPound, Elbow, Knee, PositionAdvance, PositionEscape:
		return true
	default:
		return false
	}
}

// Damaging reports whether a landed technique of this type is resolved as a
// blow against the target's chin.
func (a ActionType) Damaging() bool {
	switch a {
	case Strike, GroundPound, Elbow, Knee:
		return true
	default:
		return false
	}
}

// Limb names the body part a strike is thrown with. Non-strikes have no limb.
type Limb string

const (
	LimbNone  Limb = ""
	LimbPunch Limb = "punch"
	LimbKick  Limb = "kick"
	LimbElbow Limb = "elbow"
	LimbKnee  Limb = "knee"
)

// Technique is a named combat move with fixed base numbers.
//
// Invariant: Accuracy is in [0, 1]; Positions is non-empty.
type Technique struct {
	Name      string     `yaml:"name"`
	Type      ActionType `yaml:"type"`
	Damage    float64    `yaml:"damage"`
	Stamina   float64    `yaml:"stamina"`
	Accuracy  float64    `yaml:"accuracy"`
	Positions []Position `yaml:"positions"`
	Limb      Limb       `yaml:"limb"`
	// Reverses marks an escape that puts the actor on top instead of back on the feet.
	Reverses  bool       `yaml:"reverses"`
	Group     string     `yaml:"-"`

	legal map[Position]struct{}
}

// LegalFrom reports whether t may be attempted from position p.
func (t *Technique) LegalFrom(p Position) bool {
	_, ok := t.legal[p]
	return ok
}

// Validate checks the technique's required fields.
//
// Postcondition: nil return guarantees a non-empty name, a known type,
// accuracy in [0, 1], non-negative damage and stamina, and at least one valid position.
func (t *Technique) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("technique: name must not be empty")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("technique %q: unknown type %q", t.Name, t.Type)
	}
	if t.Accuracy < 0 || t.Accuracy > 1 {
		return fmt.Errorf("technique %q: accuracy must be in [0, 1], got %v", t.Name, t.Accuracy)
	}
	if t.Damage < 0 || t.Stamina < 0 {
		return fmt.Errorf("technique %q: damage and stamina must be >= 0", t.Name)
	}
	if len(t.Positions) == 0 {
		return fmt.Errorf("technique %q: must list at least one position", t.Name)
	}
	for _, p := range t.Positions {
		if !p.Valid() {
			return fmt.Errorf("technique %q: unknown position %q", t.Name, p)
		}
	}
	return nil
}

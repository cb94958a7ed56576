// Package fighter defines the fighter attribute sheet and its textual
// skills.md and YAML representations.
package fighter

import "math"

// Profile is a fighter's static attribute sheet. The engine never mutates it.
//
// Skills are on a 0–100 scale; Aggression is a 0–1 initiative weight.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Nickname string `yaml:"nickname,omitempty" json:"nickname,omitempty"`

	Striking          float64 `yaml:"striking" json:"striking"`
	PunchSpeed        float64 `yaml:"punch_speed" json:"punch_speed"`
	KickPower         float64 `yaml:"kick_power" json:"kick_power"`
	HeadMovement      float64 `yaml:"head_movement" json:"head_movement"`
	Footwork          float64 `yaml:"footwork" json:"footwork"`
	ClinchControl     float64 `yaml:"clinch_control" json:"clinch_control"`
	Wrestling         float64 `yaml:"wrestling" json:"wrestling"`
	TakedownDefense   float64 `yaml:"takedown_defense" json:"takedown_defense"`
	SubmissionOffense float64 `yaml:"submission_offense" json:"submission_offense"`
	SubmissionDefense float64 `yaml:"submission_defense" json:"submission_defense"`
	GroundGame        float64 `yaml:"ground_game" json:"ground_game"`
	Cardio            float64 `yaml:"cardio" json:"cardio"`
	Chin              float64 `yaml:"chin" json:"chin"`
	Recovery          float64 `yaml:"recovery" json:"recovery"`
	FightIQ           float64 `yaml:"fight_iq" json:"fight_iq"`
	Heart             float64 `yaml:"heart" json:"heart"`

	Aggression float64 `yaml:"aggression" json:"aggression"`
}

// DefaultName is used when a sheet does not name its fighter.
const DefaultName = "Unknown Fighter"

// DefaultProfile returns the neutral profile: every skill at 50, aggression 0.5.
func DefaultProfile() Profile {
	p := Profile{Name: DefaultName, Aggression: 0.5}
	for _, a := range attributes {
		*a.ptr(&p) = 50
	}
	return p
}

// DisplayName returns the name with the nickname quoted in the middle,
// e.g. `Jon "Bones" Jones`, or just the name when there is no nickname.
func (p Profile) DisplayName() string {
	if p.Nickname == "" {
		return p.Name
	}
	first, rest := splitFirst(p.Name)
	if rest == "" {
		return p.Name + ` "` + p.Nickname + `"`
	}
	return first + ` "` + p.Nickname + `" ` + rest
}

func splitFirst(s string) (string, string) {
	for i, r := range s {
		if r == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// Clamp returns a copy of p with every skill bounded to [0, 100] and
// Aggression bounded to [0, 1]. A NaN attribute takes its DefaultProfile value.
func (p Profile) Clamp() Profile {
	def := DefaultProfile()
	for _, a := range attributes {
		v := a.ptr(&p)
		if math.IsNaN(*v) {
			*v = *a.ptr(&def)
			continue
		}
		*v = clamp(*v, 0, a.max)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package fighter

import "strings"

// attribute maps one canonical sheet key and its aliases onto a Profile field.
type attribute struct {
	key     string
	aliases []string
	max     float64
	ptr     func(*Profile) *float64
}

// attributes lists every numeric attribute in the order Format writes them.
var attributes = []attribute{
	{"striking", []string{"boxing"}, 100, func(p *Profile) *float64 { return &p.Striking }},
	{"punch_speed", []string{"handspeed", "hand_speed"}, 100, func(p *Profile) *float64 { return &p.PunchSpeed }},
	{"kick_power", []string{"kicks", "kicking"}, 100, func(p *Profile) *float64 { return &p.KickPower }},
	{"head_movement", []string{"evasion"}, 100, func(p *Profile) *float64 { return &p.HeadMovement }},
	{"footwork", []string{"movement"}, 100, func(p *Profile) *float64 { return &p.Footwork }},
	{"clinch_control", []string{"clinch", "clinch_work"}, 100, func(p *Profile) *float64 { return &p.ClinchControl }},
	{"wrestling", []string{"takedowns"}, 100, func(p *Profile) *float64 { return &p.Wrestling }},
	{"takedown_defense", []string{"td_defense", "sprawl"}, 100, func(p *Profile) *float64 { return &p.TakedownDefense }},
	{"submission_offense", []string{"submissions", "bjj", "jiu_jitsu"}, 100, func(p *Profile) *float64 { return &p.SubmissionOffense }},
	{"submission_defense", []string{"sub_defense"}, 100, func(p *Profile) *float64 { return &p.SubmissionDefense }},
	{"ground_game", []string{"ground", "grappling"}, 100, func(p *Profile) *float64 { return &p.GroundGame }},
	{"cardio", []string{"endurance", "stamina"}, 100, func(p *Profile) *float64 { return &p.Cardio }},
	{"chin", []string{"durability"}, 100, func(p *Profile) *float64 { return &p.Chin }},
	{"recovery", nil, 100, func(p *Profile) *float64 { return &p.Recovery }},
	{"fight_iq", []string{"iq"}, 100, func(p *Profile) *float64 { return &p.FightIQ }},
	{"heart", []string{"grit"}, 100, func(p *Profile) *float64 { return &p.Heart }},
	{"aggression", []string{"aggressiveness"}, 1, func(p *Profile) *float64 { return &p.Aggression }},
}

// textKeys are the non-numeric sheet keys.
var textKeys = map[string]string{
	"name":     "name",
	"nickname": "nickname",
	"nick":     "nickname",
}

var attributeByAlias = func() map[string]*attribute {
	m := make(map[string]*attribute)
	for i := range attributes {
		a := &attributes[i]
		m[a.key] = a
		for _, alias := range a.aliases {
			m[alias] = a
		}
	}
	return m
}()

// normalizeKey lowercases k and folds spaces and hyphens into underscores.
func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.Trim(k, "*_` ")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}

// Keys returns the canonical numeric attribute keys in sheet order.
func Keys() []string {
	out := make([]string, len(attributes))
	for i, a := range attributes {
		out[i] = a.key
	}
	return out
}

// Value returns the numeric attribute stored under the canonical or alias key.
func (p Profile) Value(key string) (float64, bool) {
	a, ok := attributeByAlias[normalizeKey(key)]
	if !ok {
		return 0, false
	}
	return *a.ptr(&p), true
}

package bout

import (
	"time"

	"github.com/cory-johannsen/fightsim/internal/config"
)

// Tuning holds the engine's numeric constants.
type Tuning struct {
	TickInterval time.Duration
	Rounds       int
	RoundSeconds int

	// ActionBaseProbability plus the fighters' mean aggression is the chance
	// that a tick produces an action.
	ActionBaseProbability float64
	// StaminaRecoveryRate is the stamina regained per tick at recovery 100.
	StaminaRecoveryRate        float64
	ExhaustionThreshold        float64
	SignificantStrikeThreshold float64
	CritChance                 float64
	CritMultiplier             float64
	KnockdownDamageThreshold   float64
	KnockdownChance            float64
	FightIQThreshold           float64
	AccuracyCeiling            float64
	DecisionTimeout            time.Duration

	// FinishingHealth is the target health below which damaging techniques are favoured.
	FinishingHealth float64
	// LowStamina is the actor stamina below which ExpensiveStamina techniques are avoided.
	LowStamina       float64
	ExpensiveStamina float64
	// BetweenRoundRegen multiplies the recovery attribute to give health regained between rounds.
	BetweenRoundRegen float64
	CutsForStoppage   int
}

// DefaultTuning returns the standard three five-minute rounds at one tick per second.
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:               time.Second,
		Rounds:                     3,
		RoundSeconds:               300,
		ActionBaseProbability:      0.3,
		StaminaRecoveryRate:        0.5,
		ExhaustionThreshold:        10,
		SignificantStrikeThreshold: 5,
		CritChance:                 0.05,
		CritMultiplier:             1.5,
		KnockdownDamageThreshold:   10,
		KnockdownChance:            0.4,
		FightIQThreshold:           70,
		AccuracyCeiling:            0.95,
		DecisionTimeout:            2 * time.Second,
		FinishingHealth:            30,
		LowStamina:                 30,
		ExpensiveStamina:           5,
		BetweenRoundRegen:          0.5,
		CutsForStoppage:            3,
	}
}

// TuningFromConfig overlays the configured bout constants on DefaultTuning.
//
// Precondition: cfg has passed config validation.
func TuningFromConfig(cfg config.BoutConfig) Tuning {
	t := DefaultTuning()
	t.TickInterval = cfg.TickInterval
	t.Rounds = cfg.Rounds
	t.RoundSeconds = cfg.RoundSeconds
	t.ActionBaseProbability = cfg.ActionBaseProbability
	t.StaminaRecoveryRate = cfg.StaminaRecoveryRate
	t.ExhaustionThreshold = cfg.ExhaustionThreshold
	t.SignificantStrikeThreshold = cfg.SignificantStrikeThreshold
	t.CritChance = cfg.CritChance
	t.CritMultiplier = cfg.CritMultiplier
	t.KnockdownDamageThreshold = cfg.KnockdownDamageThreshold
	t.KnockdownChance = cfg.KnockdownChance
	t.FightIQThreshold = cfg.FightIQThreshold
	t.AccuracyCeiling = cfg.AccuracyCeiling
	t.DecisionTimeout = cfg.DecisionTimeout
	return t
}

// withDefaults returns DefaultTuning for a zero Tuning. Otherwise it keeps t
// and replaces only the fields where zero would break a bout: tick interval,
// round count and length, decision timeout, crit multiplier, accuracy
// ceiling, and cuts for stoppage. Zero probabilities and thresholds are kept.
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t == (Tuning{}) {
		return def
	}
	if t.TickInterval <= 0 {
		t.TickInterval = def.TickInterval
	}
	if t.Rounds <= 0 {
		t.Rounds = def.Rounds
	}
	if t.RoundSeconds <= 0 {
		t.RoundSeconds = def.RoundSeconds
	}
	if t.DecisionTimeout <= 0 {
		t.DecisionTimeout = def.DecisionTimeout
	}
	if t.CritMultiplier <= 0 {
		t.CritMultiplier = def.CritMultiplier
	}
	if t.AccuracyCeiling <= 0 {
		t.AccuracyCeiling = def.AccuracyCeiling
	}
	if t.CutsForStoppage <= 0 {
		t.CutsForStoppage = def.CutsForStoppage
	}
	return t
}

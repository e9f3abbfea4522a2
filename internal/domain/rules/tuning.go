package rules

import "time"

const (
	DefaultIncomePerBuilding = 100
	DefaultChargePerDamage   = 10
	DefaultAnimationMS       = 600
	DefaultMaxAITurns        = 8
)

// Tuning holds the balance knobs of the reference rules. Zero values are
// replaced by defaults in Normalize.
type Tuning struct {
	IncomePerBuilding   int   `yaml:"income_per_building"`
	ChargePerDamage     int   `yaml:"charge_per_damage"`
	CounterAttack       *bool `yaml:"counter_attack"`
	AnimationDurationMS int   `yaml:"animation_duration_ms"`
	MaxAITurns          int   `yaml:"max_ai_turns"`
}

func DefaultTuning() Tuning {
	return Tuning{}.Normalize()
}

func (t Tuning) Normalize() Tuning {
	if t.IncomePerBuilding <= 0 {
		t.IncomePerBuilding = DefaultIncomePerBuilding
	}
	if t.ChargePerDamage <= 0 {
		t.ChargePerDamage = DefaultChargePerDamage
	}
	if t.CounterAttack == nil {
		on := true
		t.CounterAttack = &on
	}
	if t.AnimationDurationMS <= 0 {
		t.AnimationDurationMS = DefaultAnimationMS
	}
	if t.MaxAITurns <= 0 {
		t.MaxAITurns = DefaultMaxAITurns
	}
	return t
}

func (t Tuning) CounterAttacks() bool {
	return t.CounterAttack == nil || *t.CounterAttack
}

func (t Tuning) AnimationDuration() time.Duration {
	return time.Duration(t.AnimationDurationMS) * time.Millisecond
}

// WithoutCounterAttacks returns a copy with counter-attacks disabled.
func (t Tuning) WithoutCounterAttacks() Tuning {
	off := false
	t.CounterAttack = &off
	return t
}

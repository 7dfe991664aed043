package entity

import (
	"realmshard/pkg/content"
	"realmshard/pkg/geometry"
)

// Enemy is the simulated hostile entity: target acquisition, the outer
// behavior state machine, per-attack scheduling and (for bosses) the phase
// state machine, plus damage-by-player bookkeeping for loot attribution.
type Enemy struct {
	Kernel

	DefID string
	HP    float64
	MaxHP float64

	// TargetID is a weak reference; it never extends the target's
	// lifetime and is cleared if the target disappears.
	TargetID ID

	WanderTarget geometry.Vec2
	WanderTimer  float64

	OrbitAngle float64

	PhaseIndex int
	PhaseTimer float64
	Resting    bool

	// LastFire holds, per attack index, the seconds remaining until that
	// attack may fire again; the tick counts it down by dt.
	LastFire []float64

	// DamageByPlayer maps attacker id to cumulative damage dealt, used to
	// determine soulbound loot qualification and kill credit.
	DamageByPlayer map[ID]float64

	// LastHitBy is the attacker id of the most recent hit; on a lethal hit
	// this is the killing shot's owner, who receives the xp award.
	LastHitBy ID
}

// NewEnemy constructs a live enemy from its content definition at pos.
func NewEnemy(def content.EnemyDef, pos geometry.Vec2) *Enemy {
	return &Enemy{
		Kernel:         NewKernel(pos, def.Radius),
		DefID:          def.ID,
		HP:             def.MaxHP,
		MaxHP:          def.MaxHP,
		LastFire:       make([]float64, len(def.Attacks)),
		DamageByPlayer: make(map[ID]float64),
	}
}

// HPPercent returns current hp as a percentage of max (0..100).
func (e *Enemy) HPPercent() float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return 100 * e.HP / e.MaxHP
}

// CurrentPhase selects the active phase per spec §4.4: phases are stored
// in descending hp-threshold order, and the current phase is the last one
// whose threshold is ≥ current hp%. Returns -1 if def has no phases.
func CurrentPhase(def content.EnemyDef, hpPercent float64) int {
	idx := -1
	for i, ph := range def.Phases {
		if ph.HPPercent >= hpPercent {
			idx = i
		}
	}
	return idx
}

// CreditDamage records a hit against the enemy for loot/kill attribution.
func (e *Enemy) CreditDamage(attacker ID, amount float64) {
	if e.DamageByPlayer == nil {
		e.DamageByPlayer = make(map[ID]float64)
	}
	e.DamageByPlayer[attacker] += amount
	e.LastHitBy = attacker
}

// SoulboundQualifiedThreshold is the fraction of max hp an attacker must
// have contributed to qualify for soulbound drops on this enemy's death.
const SoulboundQualifiedThreshold = 0.05

// QualifiedAttackers returns every attacker id whose cumulative damage
// meets or exceeds the soulbound qualification threshold.
func (e *Enemy) QualifiedAttackers() []ID {
	threshold := e.MaxHP * SoulboundQualifiedThreshold
	var out []ID
	for id, dmg := range e.DamageByPlayer {
		if dmg >= threshold {
			out = append(out, id)
		}
	}
	return out
}


package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"realmshard/pkg/content"
	"realmshard/pkg/geometry"
)

func TestNewEnemy(t *testing.T) {
	def := content.EnemyDef{ID: "pirate", MaxHP: 100, Radius: 0.4, Attacks: []content.AttackDef{{}, {}}}
	e := NewEnemy(def, geometry.Vec2{X: 1, Y: 1})

	assert.False(t, e.ID.IsNil())
	assert.Equal(t, 100.0, e.HP)
	assert.Equal(t, 100.0, e.MaxHP)
	assert.Len(t, e.LastFire, 2)
	assert.NotNil(t, e.DamageByPlayer)
}

func TestEnemy_HPPercent(t *testing.T) {
	e := NewEnemy(content.EnemyDef{MaxHP: 200}, geometry.Vec2{})
	e.HP = 50
	assert.InDelta(t, 25, e.HPPercent(), 1e-9)
}

func TestCurrentPhase(t *testing.T) {
	def := content.EnemyDef{Phases: []content.PhaseDef{
		{HPPercent: 100},
		{HPPercent: 66},
		{HPPercent: 33},
	}}

	tests := []struct {
		name    string
		hpPct   float64
		wantIdx int
	}{
		{"full health", 100, 0},
		{"between thresholds", 80, 0},
		{"exactly second threshold", 66, 1},
		{"below second threshold", 50, 1},
		{"lowest phase", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIdx, CurrentPhase(def, tt.hpPct))
		})
	}
}

func TestCurrentPhase_NoPhases(t *testing.T) {
	assert.Equal(t, -1, CurrentPhase(content.EnemyDef{}, 50))
}

func TestEnemy_CreditDamage_And_QualifiedAttackers(t *testing.T) {
	e := NewEnemy(content.EnemyDef{MaxHP: 1000}, geometry.Vec2{})
	a, b := NewID(), NewID()

	e.CreditDamage(a, 60) // 6% of max, qualifies
	e.CreditDamage(b, 10) // 1%, does not qualify

	qualified := e.QualifiedAttackers()
	assert.Contains(t, qualified, a)
	assert.NotContains(t, qualified, b)
	assert.Equal(t, b, e.LastHitBy)
}

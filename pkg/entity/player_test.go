package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"realmshard/pkg/content"
	"realmshard/pkg/geometry"
)

func testClass() content.ClassDef {
	return content.ClassDef{
		ID: "wizard", BaseHP: 100, BaseMP: 100,
		BaseStats:     content.Stats{Attack: 15, Defense: 3, Speed: 5, Vitality: 5, Wisdom: 10},
		PerLevelStats: content.Stats{Attack: 1, Vitality: 0.5, Wisdom: 0.8},
		StartingItems: content.StartingEquipment{Weapon: "staff", Ability: "tome", Armor: "robe"},
	}
}

func TestNewPlayer(t *testing.T) {
	class := testClass()
	p := NewPlayer("acct-1", "Gandalf", class, geometry.Vec2{X: 2, Y: 3})

	assert.False(t, p.ID.IsNil())
	assert.Equal(t, "Gandalf", p.Name)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 100.0, p.HP)
	assert.Equal(t, 100.0, p.MaxHP)
	assert.Equal(t, "staff", p.Equipment[SlotWeapon])
	assert.Equal(t, "tome", p.Equipment[SlotAbility])
	assert.Equal(t, "robe", p.Equipment[SlotArmor])
	assert.Equal(t, "", p.Equipment[SlotRing])
}

func TestPlayer_EffectiveSpeed(t *testing.T) {
	table := content.DefaultTable()
	p := NewPlayer("a", "n", testClass(), geometry.Vec2{})
	base := p.EffectiveSpeed(table)
	assert.InDelta(t, 4+5*0.1, base, 1e-9)

	p.Equipment[SlotRing] = "ring_of_haste"
	withRing := p.EffectiveSpeed(table)
	assert.Greater(t, withRing, base)

	p.Buffs = append(p.Buffs, Buff{Stat: "speed", Amount: 2, Expiry: 100})
	withBuff := p.EffectiveSpeed(table)
	assert.Greater(t, withBuff, withRing)
}

func TestPlayer_ExpireBuffs(t *testing.T) {
	p := NewPlayer("a", "n", testClass(), geometry.Vec2{})
	p.Buffs = []Buff{
		{Stat: "attack", Amount: 5, Expiry: 10},
		{Stat: "defense", Amount: 3, Expiry: 20},
	}
	p.ExpireBuffs(15)
	assert.Len(t, p.Buffs, 1)
	assert.Equal(t, "defense", p.Buffs[0].Stat)
}

func TestPlayer_ApplyRegen(t *testing.T) {
	class := testClass()
	p := NewPlayer("a", "n", class, geometry.Vec2{})
	p.HP = 50
	p.MP = 50

	p.ApplyRegen(1, false)
	assert.Greater(t, p.HP, 50.0)
	assert.Greater(t, p.MP, 50.0)
	assert.LessOrEqual(t, p.HP, p.MaxHP)

	p.HP = 50
	p.ApplyRegen(1, true)
	assert.InDelta(t, 50+p.MaxHP*0.2, p.HP, 1e-9)
}

func TestPlayer_ClampVitals(t *testing.T) {
	p := NewPlayer("a", "n", testClass(), geometry.Vec2{})
	p.MaxHP = 80
	p.HP = 100
	p.ClampVitals()
	assert.Equal(t, 80.0, p.HP)
}

func TestPlayer_ShootCooldown(t *testing.T) {
	p := NewPlayer("a", "n", testClass(), geometry.Vec2{})
	assert.True(t, p.CanShoot())
	p.SetShootCooldown(0.5)
	assert.False(t, p.CanShoot())
	p.TickShootCooldown(0.6)
	assert.True(t, p.CanShoot())
}

func TestExpForLevel(t *testing.T) {
	assert.Equal(t, 100, ExpForLevel(1))
	assert.Equal(t, 120, ExpForLevel(2))
}

func TestPlayer_MaybeLevelUp(t *testing.T) {
	class := testClass()
	p := NewPlayer("a", "n", class, geometry.Vec2{})
	p.Exp = ExpForLevel(2) + 5

	gained := p.MaybeLevelUp(class)
	assert.Equal(t, 1, gained)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0, p.Exp)
	assert.Equal(t, p.MaxHP, p.HP)
}

func TestPlayer_MaybeLevelUp_CapsAtMaxLevel(t *testing.T) {
	class := testClass()
	p := NewPlayer("a", "n", class, geometry.Vec2{})
	p.Level = MaxLevel
	p.Exp = 1_000_000
	gained := p.MaybeLevelUp(class)
	assert.Equal(t, 0, gained)
	assert.Equal(t, MaxLevel, p.Level)
}

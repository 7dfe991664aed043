package entity

import (
	"math"

	"realmshard/pkg/content"
	"realmshard/pkg/geometry"
)

const (
	// PlayerRadius is the fixed collision radius of every player character.
	PlayerRadius = 0.35
	// MaxLevel caps character progression.
	MaxLevel = 20
)

// EquipSlot indexes a player's four equipment slots.
type EquipSlot int

const (
	SlotWeapon EquipSlot = iota
	SlotAbility
	SlotArmor
	SlotRing
)

// InventorySize is the number of free inventory slots, independent of the
// four equipment slots.
const InventorySize = 8

// Buff is one active timed stat modifier.
type Buff struct {
	Stat   string
	Amount float64
	Expiry float64 // absolute instance-clock seconds
}

// Input is the most recently received client input for a player.
type Input struct {
	MoveDir  geometry.Vec2
	AimAngle float64
	Shooting bool
}

// Lifetime accumulates a player's per-character running totals, persisted
// with the character record.
type Lifetime struct {
	DamageDealt    float64
	DamageTaken    float64
	Shots          int
	AbilitiesUsed  int
	EnemiesKilled  int
	DungeonsCleared int
	TimePlayed     float64
}

// Player is the simulated player-character entity. It is owned by its
// resident instance; the persistence layer owns the durable character
// record it is loaded from and saved back to.
type Player struct {
	Kernel

	AccountID string
	Name      string
	ClassID   string
	Level     int
	Exp       int

	HP, MaxHP float64
	MP, MaxMP float64

	Stats content.Stats

	// Equipment holds four slots (weapon, ability, armor, ring); Inventory
	// holds InventorySize general slots. Both store content item ids, empty
	// string for an empty slot.
	Equipment [4]string
	Inventory [InventorySize]string

	LastHitAt float64
	Lifetime  Lifetime
	Buffs     []Buff

	LastInput Input

	shootCooldown float64
	abilityCooldown float64

	// InstanceID is a back-reference to the owning instance, used by
	// outbound event routing; it is not itself simulated.
	InstanceID string
}

// NewPlayer constructs a freshly created level-1 character from its class
// definition, placed at pos.
func NewPlayer(accountID, name string, class content.ClassDef, pos geometry.Vec2) *Player {
	p := &Player{
		Kernel:    NewKernel(pos, PlayerRadius),
		AccountID: accountID,
		Name:      name,
		ClassID:   class.ID,
		Level:     1,
		Stats:     class.BaseStats,
		HP:        class.BaseHP,
		MaxHP:     class.BaseHP,
		MP:        class.BaseMP,
		MaxMP:     class.BaseMP,
	}
	p.Equipment[SlotWeapon] = class.StartingItems.Weapon
	p.Equipment[SlotAbility] = class.StartingItems.Ability
	p.Equipment[SlotArmor] = class.StartingItems.Armor
	return p
}

// EffectiveSpeed returns the player's movement speed per spec §4.3:
// 4 + speed·0.1 + ring.speed·0.1 + buff.speed·0.1.
func (p *Player) EffectiveSpeed(table *content.Table) float64 {
	speed := 4 + p.Stats.Speed*0.1
	if ring, ok := table.Rings[p.Equipment[SlotRing]]; ok {
		speed += ring.SpeedBonus * 0.1
	}
	speed += p.buffTotal("speed") * 0.1
	return speed
}

// EffectiveAttack folds in the attack buff total.
func (p *Player) EffectiveAttack() float64 {
	return p.Stats.Attack + p.buffTotal("attack")
}

// EffectiveDefense folds in armor defense and the defense buff total.
func (p *Player) EffectiveDefense(table *content.Table) float64 {
	def := p.Stats.Defense + p.buffTotal("defense")
	if armor, ok := table.Armors[p.Equipment[SlotArmor]]; ok {
		def += armor.Defense
	}
	return def
}

func (p *Player) buffTotal(stat string) float64 {
	var total float64
	for _, b := range p.Buffs {
		if b.Stat == stat {
			total += b.Amount
		}
	}
	return total
}

// ExpireBuffs drops every buff whose expiry has passed now (absolute
// instance-clock seconds).
func (p *Player) ExpireBuffs(now float64) {
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		if b.Expiry > now {
			kept = append(kept, b)
		}
	}
	p.Buffs = kept
}

// ApplyRegen accrues hp/mp regen for dt seconds. inSafeZone forces the 20%
// of max per second regen rate used by nexus/vault instances; otherwise
// the stat-derived rate from spec §4.2 applies.
func (p *Player) ApplyRegen(dt float64, inSafeZone bool) {
	var hpRate, mpRate float64
	if inSafeZone {
		hpRate = p.MaxHP * 0.2
		mpRate = p.MaxMP * 0.2
	} else {
		hpRate = 1 + p.Stats.Vitality*0.12
		mpRate = 0.5 + p.Stats.Wisdom*0.06
	}
	p.HP = math.Min(p.MaxHP, p.HP+hpRate*dt)
	p.MP = math.Min(p.MaxMP, p.MP+mpRate*dt)
}

// ClampVitals clamps hp/mp to the current effective maximums, used after
// an equipment change in the armor or ring slot per spec §3 invariants.
func (p *Player) ClampVitals() {
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	if p.MP > p.MaxMP {
		p.MP = p.MaxMP
	}
}

// TickShootCooldown advances the weapon cooldown timer by dt.
func (p *Player) TickShootCooldown(dt float64) {
	if p.shootCooldown > 0 {
		p.shootCooldown -= dt
	}
}

// CanShoot reports whether the weapon cooldown has elapsed.
func (p *Player) CanShoot() bool { return p.shootCooldown <= 0 }

// SetShootCooldown arms the weapon cooldown for the given rate-of-fire
// interval (seconds between shots).
func (p *Player) SetShootCooldown(rateOfFire float64) { p.shootCooldown = rateOfFire }

// TickAbilityCooldown advances the ability cooldown timer by dt.
func (p *Player) TickAbilityCooldown(dt float64) {
	if p.abilityCooldown > 0 {
		p.abilityCooldown -= dt
	}
}

// CanUseAbility reports whether the ability cooldown has elapsed.
func (p *Player) CanUseAbility() bool { return p.abilityCooldown <= 0 }

// SetAbilityCooldown arms the ability cooldown.
func (p *Player) SetAbilityCooldown(cooldown float64) { p.abilityCooldown = cooldown }

// ExpForLevel returns the experience required to reach level, per
// spec §4.3: floor(100 · 1.2^(level-1)).
func ExpForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(1.2, float64(level-1))))
}

// MaybeLevelUp applies class per-level growth repeatedly while accumulated
// exp crosses the next threshold, returning the number of levels gained.
func (p *Player) MaybeLevelUp(class content.ClassDef) int {
	gained := 0
	for p.Level < MaxLevel && p.Exp >= ExpForLevel(p.Level+1) {
		p.Level++
		p.Exp = 0
		p.Stats.Attack += class.PerLevelStats.Attack
		p.Stats.Defense += class.PerLevelStats.Defense
		p.Stats.Speed += class.PerLevelStats.Speed
		p.Stats.Dexterity += class.PerLevelStats.Dexterity
		p.Stats.Vitality += class.PerLevelStats.Vitality
		p.Stats.Wisdom += class.PerLevelStats.Wisdom
		p.MaxHP = class.BaseHP + p.Stats.Vitality*4
		p.MaxMP = class.BaseMP + p.Stats.Wisdom*3
		p.HP = p.MaxHP
		p.MP = p.MaxMP
		gained++
	}
	return gained
}

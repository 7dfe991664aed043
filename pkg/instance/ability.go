package instance

import (
	"math"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// UseAbility resolves the player's equipped ability item, checks its mp
// cost and cooldown, consumes/arms them, and runs its effect. Returns nil
// if the ability is unequipped, on cooldown, or unaffordable.
func (inst *Instance) UseAbility(player *entity.Player) []Event {
	inst.mu.Lock()
	ability, ok := inst.content.Abilities[player.Equipment[entity.SlotAbility]]
	if !ok || !player.CanUseAbility() || player.MP < ability.MPCost {
		inst.mu.Unlock()
		return nil
	}
	player.MP -= ability.MPCost
	player.SetAbilityCooldown(ability.Cooldown)
	player.Lifetime.AbilitiesUsed++
	inst.mu.Unlock()

	return []Event{inst.ExecuteAbility(player, ability)}
}

// ExecuteAbility applies the effect named by ability and returns the
// abilityEffect broadcast event, per spec §4.2/§4.3. Caller has already
// checked MP cost and cooldown and consumed/armed them.
func (inst *Instance) ExecuteAbility(player *entity.Player, ability content.AbilityDef) Event {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	switch ability.Kind {
	case content.AbilityDamage:
		inst.abilityDamage(player, ability)
	case content.AbilityBuff:
		player.Buffs = append(player.Buffs, entity.Buff{
			Stat:   ability.BuffStat,
			Amount: ability.BuffAmount,
			Expiry: inst.clock + ability.BuffDur,
		})
	case content.AbilityHeal:
		player.HP = math.Min(player.MaxHP, player.HP+ability.HealAmount)
	case content.AbilityTeleport:
		dest := player.Pos.Add(geometry.FromAngle(player.LastInput.AimAngle).Scale(ability.TeleRange))
		if inst.Map.CanOccupy(dest, entity.PlayerRadius) {
			player.Pos = dest
		}
	}

	return broadcastEvent("abilityEffect", map[string]interface{}{
		"playerId": player.ID,
		"kind":     ability.Kind,
		"pos":      player.Pos,
	})
}

func (inst *Instance) abilityDamage(player *entity.Player, ability content.AbilityDef) {
	dmg := ability.DamageMin
	if ability.DamageMax > ability.DamageMin {
		dmg += inst.rng.Float64() * (ability.DamageMax - ability.DamageMin)
	}
	for _, e := range inst.enemies {
		if player.Pos.Distance(e.Pos) <= ability.Radius {
			var defense float64
			if def, ok := inst.content.Enemies[e.DefID]; ok {
				defense = def.Defense
			}
			applyPlayerDamageToEnemy(e, player.ID, dmg, defense)
		}
	}
}

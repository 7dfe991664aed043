package instance

import (
	"math"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
)

// enemyDamageToPlayer applies spec §4.2's enemy→player formula: a minimum
// 15% of raw damage always bleeds through, regardless of defense.
func enemyDamageToPlayer(raw, effectiveDefense float64) float64 {
	bleed := math.Floor(raw * 0.15)
	reduced := raw - effectiveDefense
	if reduced > bleed {
		return reduced
	}
	return bleed
}

// playerDamageToEnemy applies spec §4.2's player→enemy formula: raw damage
// minus flat defense, floored at 1.
func playerDamageToEnemy(raw, flatDefense float64) float64 {
	d := raw - flatDefense
	if d < 1 {
		return 1
	}
	return d
}

func applyPlayerDamageToEnemy(e *entity.Enemy, attacker entity.ID, raw, flatDefense float64) float64 {
	dmg := playerDamageToEnemy(raw, flatDefense)
	e.HP -= dmg
	e.CreditDamage(attacker, dmg)
	return dmg
}

// resolveCombat runs stage 2 of the tick pipeline: every live projectile is
// tested against every opposed-side entity for circle overlap; hits apply
// damage, update the hit-set, and on a lethal hit run death handling. Safe
// zones skip this stage entirely.
func (inst *Instance) resolveCombat() []Event {
	if inst.IsSafeZone() {
		return nil
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	var events []Event

	for _, pr := range inst.projectiles {
		if pr.Removed() {
			continue
		}
		switch pr.OwnerSide {
		case entity.SidePlayer:
			events = append(events, inst.resolveProjectileVsEnemies(pr)...)
		case entity.SideEnemy:
			events = append(events, inst.resolveProjectileVsPlayers(pr)...)
		}
	}

	return events
}

func (inst *Instance) resolveProjectileVsEnemies(pr *entity.Projectile) []Event {
	var events []Event
	for _, e := range inst.enemies {
		if e.Removed() || pr.HasHit(e.ID) {
			continue
		}
		if !pr.Overlaps(&e.Kernel) {
			continue
		}
		pr.RecordHit(e.ID)
		var defense float64
		if def, ok := inst.content.Enemies[e.DefID]; ok {
			defense = def.Defense
		}
		dmg := applyPlayerDamageToEnemy(e, pr.OwnerID, pr.Damage, defense)
		if owner, ok := inst.players[pr.OwnerID]; ok {
			owner.Lifetime.DamageDealt += dmg
		}
		events = append(events, broadcastEvent("damage", map[string]interface{}{
			"targetId": e.ID,
			"amount":   dmg,
		}))
		if e.HP <= 0 {
			events = append(events, inst.killEnemy(e)...)
		}
		if !pr.Pierce {
			break
		}
	}
	return events
}

func (inst *Instance) resolveProjectileVsPlayers(pr *entity.Projectile) []Event {
	var events []Event
	for _, p := range inst.players {
		if pr.HasHit(p.ID) {
			continue
		}
		if !pr.Overlaps(&p.Kernel) {
			continue
		}
		pr.RecordHit(p.ID)

		dmg := enemyDamageToPlayer(pr.Damage, p.EffectiveDefense(inst.content))
		p.HP -= dmg
		p.LastHitAt = inst.clock
		p.Lifetime.DamageTaken += dmg

		events = append(events, targetedEvent("damage", p.ID, map[string]interface{}{
			"amount": dmg,
		}))

		if p.HP <= 0 {
			events = append(events, inst.killPlayer(p)...)
		}
		if !pr.Pierce {
			break
		}
	}
	return events
}

func (inst *Instance) killPlayer(p *entity.Player) []Event {
	p.MarkRemove()
	delete(inst.players, p.ID)
	return []Event{targetedEvent("death", p.ID, map[string]interface{}{
		"characterId": p.ID.String(),
	})}
}

// killEnemy runs death handling: xp award to the killing shot's owner,
// loot rolls with soulbound-qualification filtering, dungeon-portal-drop
// logic, and the dungeon boss-kill latch, per spec §4.4.
func (inst *Instance) killEnemy(e *entity.Enemy) []Event {
	e.MarkRemove()
	def, ok := inst.content.Enemies[e.DefID]

	var events []Event

	if killer, found := inst.players[e.LastHitBy]; found && ok {
		killer.Exp += def.XPAward
		killer.Lifetime.EnemiesKilled++
		if gained := killer.MaybeLevelUp(inst.classes[killer.ClassID]); gained > 0 {
			events = append(events, targetedEvent("levelUp", killer.ID, map[string]interface{}{
				"level": killer.Level,
			}))
		}
	}

	events = append(events, broadcastEvent("death", map[string]interface{}{
		"enemyId": e.ID,
		"pos":     e.Pos,
	}))

	if ok {
		events = append(events, inst.rollLoot(e, def)...)
		if def.PortalDrop != nil && inst.rng.Float64() < def.PortalDrop.Chance {
			events = append(events, broadcastEvent("dungeonPortalRequest", map[string]interface{}{
				"pos":        e.Pos,
				"expirySecs": def.PortalDrop.ExpirySecs,
				"sourceId":   inst.ID,
			}))
		}
		if def.IsBoss && inst.dungeon != nil {
			inst.dungeon.BossKilled = true
			events = append(events, broadcastEvent("bossKilled", map[string]interface{}{
				"pos":        e.Pos,
				"sourceId":   inst.dungeon.SourceInstanceID,
				"instanceId": inst.ID,
			}))
		}
	}

	return events
}

// rollLoot independently rolls every loot-table entry. Soulbound drops
// spawn one private bag per qualifying attacker (>= 5% of max hp damage
// contributed); non-soulbound drops spawn a single public bag.
func (inst *Instance) rollLoot(e *entity.Enemy, def content.EnemyDef) []Event {
	var events []Event
	qualified := e.QualifiedAttackers()

	for _, entry := range def.LootTable {
		if inst.rng.Float64() >= entry.Chance {
			continue
		}

		if entry.Soulbound {
			for _, attacker := range qualified {
				bag := entity.NewLootBag(e.Pos, []string{entry.ItemID}, attacker, true, inst.clock)
				inst.loot[bag.ID] = bag
				events = append(events, targetedEvent("lootSpawn", attacker, map[string]interface{}{
					"bagId": bag.ID,
					"pos":   bag.Pos,
				}))
			}
			continue
		}

		bag := entity.NewLootBag(e.Pos, []string{entry.ItemID}, entity.NilID, false, inst.clock)
		inst.loot[bag.ID] = bag
		events = append(events, broadcastEvent("lootSpawn", map[string]interface{}{
			"bagId": bag.ID,
			"pos":   bag.Pos,
		}))
	}

	return events
}

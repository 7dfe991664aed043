package instance

import (
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// snapshotEveryNTicks emits AOI snapshots at half the simulation tick rate,
// per spec §4.2 stage 5.
const snapshotEveryNTicks = 2

// Update advances the instance by one tick and returns every event produced
// during it, in pipeline order: entity tick, combat resolution, spawn
// scheduler, cleanup, snapshot emit. The orchestration layer drains the
// returned events and routes them through its playerId->session table.
func (inst *Instance) Update(dt float64) []Event {
	var events []Event

	events = append(events, inst.drainCommands()...)
	events = append(events, inst.tickEntities(dt)...)
	events = append(events, inst.resolveCombat()...)
	events = append(events, inst.runSpawnScheduler(dt)...)
	inst.cleanup()

	inst.mu.Lock()
	inst.clock += dt
	inst.tick++
	emit := inst.tick%snapshotEveryNTicks == 0
	tick := inst.tick
	inst.mu.Unlock()

	if emit {
		events = append(events, inst.emitSnapshots(tick)...)
	}

	return events
}

func (inst *Instance) drainCommands() []Event {
	inst.mu.Lock()
	cmds := inst.pending
	inst.pending = nil
	inst.mu.Unlock()

	var events []Event
	for _, cmd := range cmds {
		events = append(events, cmd(inst)...)
	}
	return events
}

// tickEntities runs stage 1: players, enemies, projectiles, loot, portals.
func (inst *Instance) tickEntities(dt float64) []Event {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	safeZone := inst.IsSafeZone()

	for _, p := range inst.players {
		inst.tickPlayerMovement(p, dt)
		p.ExpireBuffs(inst.clock)
		p.ApplyRegen(dt, safeZone)
		p.TickShootCooldown(dt)
		p.TickAbilityCooldown(dt)
		p.Lifetime.TimePlayed += dt
	}

	var events []Event
	for _, e := range inst.enemies {
		if e.Removed() {
			continue
		}
		def, ok := inst.content.Enemies[e.DefID]
		if !ok {
			continue
		}
		events = append(events, inst.tickEnemy(e, def, dt)...)
	}

	for _, pr := range inst.projectiles {
		pr.Update(dt)
		if pr.Expired() || !inst.Map.WalkableAt(pr.Pos) {
			pr.MarkRemove()
		}
	}

	for _, bag := range inst.loot {
		bag.UpdateExpiry(inst.clock)
	}

	for _, p := range inst.portals {
		p.Update(dt, inst.clock)
	}

	return events
}

func (inst *Instance) tickPlayerMovement(p *entity.Player, dt float64) {
	speed := p.EffectiveSpeed(inst.content)
	delta := p.LastInput.MoveDir.Normalized().Scale(speed * dt)
	p.Pos = geometry.Move(inst.Map, p.Pos, delta, p.Radius)
}

// cleanup drains every remove-flagged entity from its container (stage 4).
func (inst *Instance) cleanup() {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	for id, e := range inst.enemies {
		if e.Removed() {
			delete(inst.enemies, id)
		}
	}
	for id, pr := range inst.projectiles {
		if pr.Removed() {
			delete(inst.projectiles, id)
		}
	}
	for id, bag := range inst.loot {
		if bag.Removed() {
			delete(inst.loot, id)
		}
	}
	for id, p := range inst.portals {
		if p.Removed() {
			delete(inst.portals, id)
		}
	}
}

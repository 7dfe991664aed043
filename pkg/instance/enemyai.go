package instance

import (
	"math"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// tickEnemy advances one enemy's target acquisition, behavior state
// machine, phase system and attack scheduling for dt seconds. Caller holds
// inst.mu.
func (inst *Instance) tickEnemy(e *entity.Enemy, def content.EnemyDef, dt float64) []Event {
	inst.acquireTarget(e, def)

	var target *entity.Player
	if !e.TargetID.IsNil() {
		target = inst.players[e.TargetID]
		if target == nil {
			e.TargetID = entity.NilID
		}
	}

	inst.runBehavior(e, def, target, dt)

	if len(def.Phases) > 0 {
		inst.tickPhase(e, def, dt)
	}

	return inst.tickAttacks(e, def, target, dt)
}

func (inst *Instance) acquireTarget(e *entity.Enemy, def content.EnemyDef) {
	var nearest *entity.Player
	nearestDist := math.MaxFloat64
	for _, p := range inst.players {
		d := e.Pos.Distance(p.Pos)
		if d <= def.AcquireRange && d < nearestDist {
			nearest = p
			nearestDist = d
		}
	}
	if nearest != nil {
		e.TargetID = nearest.ID
	} else {
		e.TargetID = entity.NilID
	}
}

func (inst *Instance) runBehavior(e *entity.Enemy, def content.EnemyDef, target *entity.Player, dt float64) {
	switch def.Behavior {
	case content.BehaviorStationary:
		return
	case content.BehaviorWander:
		inst.wander(e, def, dt)
	case content.BehaviorChase:
		if target == nil || e.Pos.Distance(target.Pos) > firstAttackRange(def) {
			inst.wander(e, def, dt)
			return
		}
		holdBack := math.Max(2, firstAttackRange(def)*0.5)
		if e.Pos.Distance(target.Pos) > holdBack {
			inst.stepToward(e, def, target.Pos, dt)
		}
	case content.BehaviorOrbit:
		if target == nil {
			inst.wander(e, def, dt)
			return
		}
		if e.Pos.Distance(target.Pos) > def.OrbitRange+1 {
			inst.stepToward(e, def, target.Pos, dt)
			return
		}
		e.OrbitAngle += def.OrbitSpeed * dt
		orbitPoint := target.Pos.Add(geometry.FromAngle(e.OrbitAngle).Scale(def.OrbitRange))
		inst.stepToward(e, def, orbitPoint, dt)
	}
}

func firstAttackRange(def content.EnemyDef) float64 {
	if len(def.Attacks) == 0 {
		return 0
	}
	return def.Attacks[0].Range
}

func (inst *Instance) wander(e *entity.Enemy, def content.EnemyDef, dt float64) {
	e.WanderTimer -= dt
	if e.WanderTimer <= 0 {
		e.WanderTarget = e.Pos.Add(geometry.Vec2{
			X: (inst.rng.Float64()*2 - 1) * 3,
			Y: (inst.rng.Float64()*2 - 1) * 3,
		})
		e.WanderTimer = 2 + inst.rng.Float64()*2
	}
	before := e.Pos
	inst.stepToward(e, def, e.WanderTarget, dt)
	if e.Pos == before {
		e.WanderTimer = 0
	}
}

// stepToward moves e along the normalized direction toward dest at
// def.Speed, gated by geometry.Move (wall-slide collision).
func (inst *Instance) stepToward(e *entity.Enemy, def content.EnemyDef, dest geometry.Vec2, dt float64) {
	dir := dest.Sub(e.Pos).Normalized()
	delta := dir.Scale(def.Speed * dt)
	e.Pos = geometry.Move(inst.Map, e.Pos, delta, e.Radius)
}

func (inst *Instance) tickPhase(e *entity.Enemy, def content.EnemyDef, dt float64) {
	idx := entity.CurrentPhase(def, e.HPPercent())
	if idx < 0 {
		return
	}
	if idx != e.PhaseIndex {
		e.PhaseIndex = idx
		e.PhaseTimer = 0
		e.Resting = false
	}

	phase := def.Phases[e.PhaseIndex]
	e.PhaseTimer += dt
	if e.Resting {
		if e.PhaseTimer >= phase.RestDuration {
			e.PhaseTimer = 0
			e.Resting = false
		}
	} else {
		if e.PhaseTimer >= phase.AttackDuration {
			e.PhaseTimer = 0
			e.Resting = true
		}
	}
}

func (inst *Instance) tickAttacks(e *entity.Enemy, def content.EnemyDef, target *entity.Player, dt float64) []Event {
	if target == nil || e.Resting {
		return nil
	}

	allowed := allowedAttackIndices(def, e.PhaseIndex)

	var events []Event
	for i := range def.Attacks {
		e.LastFire[i] -= dt
	}
	for i, atk := range def.Attacks {
		if len(def.Phases) > 0 && !allowed[i] {
			continue
		}
		if e.LastFire[i] > 0 {
			continue
		}
		if e.Pos.Distance(target.Pos) > atk.Range {
			continue
		}
		e.LastFire[i] = atk.RateOfFire
		events = append(events, inst.fireEnemyAttack(e, atk, target)...)
	}
	return events
}

func allowedAttackIndices(def content.EnemyDef, phaseIndex int) map[int]bool {
	allowed := make(map[int]bool)
	if phaseIndex < 0 || phaseIndex >= len(def.Phases) {
		return allowed
	}
	for _, idx := range def.Phases[phaseIndex].AttackIndices {
		allowed[idx] = true
	}
	return allowed
}

func (inst *Instance) fireEnemyAttack(e *entity.Enemy, atk content.AttackDef, target *entity.Player) []Event {
	center := target.Pos.Sub(e.Pos).Angle()
	if atk.Predictive {
		center = predictiveAimAngle(e.Pos, target, inst.content, atk.ProjectileSpeed)
	}

	angles := fanAngles(center, atk.NumProjectiles, atk.ArcGapDegrees*math.Pi/180)
	for _, angle := range angles {
		velocity := geometry.FromAngle(angle).Scale(atk.ProjectileSpeed)
		pr := entity.NewProjectile(e.Pos, velocity, "", e.ID, entity.SideEnemy, atk.Damage, atk.ProjectileLife, inst.clock, false)
		inst.projectiles[pr.ID] = pr
	}

	return []Event{broadcastEvent("shotFired", map[string]interface{}{
		"enemyId": e.ID,
		"pos":     e.Pos,
	})}
}

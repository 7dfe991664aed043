package instance

import (
	"math"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// Shoot fires the player's equipped weapon along LastInput.AimAngle, honoring
// the weapon's rate-of-fire cooldown, projectile count, arc gap and pierce
// flag, per spec §4.3. No-op (and returns nil) if the weapon is on cooldown
// or unequipped.
func (inst *Instance) Shoot(player *entity.Player) []Event {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if !player.CanShoot() {
		return nil
	}
	weapon, ok := inst.content.Weapons[player.Equipment[entity.SlotWeapon]]
	if !ok {
		return nil
	}

	player.SetShootCooldown(weapon.RateOfFire)
	player.Lifetime.Shots++

	base := weapon.MinDamage
	if weapon.MaxDamage > weapon.MinDamage {
		base += inst.rng.Float64() * (weapon.MaxDamage - weapon.MinDamage)
	}
	damage := math.Floor(base + player.EffectiveAttack()*0.5)

	lifetime := weapon.Range / weapon.ProjectileSpeed
	angles := fanAngles(player.LastInput.AimAngle, weapon.NumProjectiles, weapon.ArcGapRadians)

	for _, angle := range angles {
		velocity := geometry.FromAngle(angle).Scale(weapon.ProjectileSpeed)
		pr := entity.NewProjectile(player.Pos, velocity, weapon.ProjectileDefID, player.ID, entity.SidePlayer, damage, lifetime, inst.clock, weapon.Pierce)
		inst.projectiles[pr.ID] = pr
	}

	return []Event{broadcastEvent("shotFired", map[string]interface{}{
		"playerId": player.ID,
		"pos":      player.Pos,
	})}
}

// fanAngles returns the n projectile angles fired around center, spaced by
// arcGap radians. Per spec §4.3/§4.4 tie-break: an even count is offset by
// half the gap so no projectile fires exactly on center ("safe corridor");
// an odd count centers one projectile on it.
func fanAngles(center float64, n int, arcGap float64) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n%2 == 1 {
		mid := n / 2
		for i := 0; i < n; i++ {
			out[i] = center + float64(i-mid)*arcGap
		}
		return out
	}
	half := float64(n-1) / 2
	for i := 0; i < n; i++ {
		out[i] = center + (float64(i)-half)*arcGap
	}
	return out
}

// predictiveAimAngle returns the angle from origin to target's extrapolated
// position given its last observed move direction and effective speed, with
// time-of-flight = distance / projectileSpeed, per spec §4.4.
func predictiveAimAngle(origin geometry.Vec2, target *entity.Player, table *content.Table, projectileSpeed float64) float64 {
	dist := origin.Distance(target.Pos)
	tof := 0.0
	if projectileSpeed > 0 {
		tof = dist / projectileSpeed
	}
	speed := target.EffectiveSpeed(table)
	predicted := target.Pos.Add(target.LastInput.MoveDir.Normalized().Scale(speed * tof))
	return predicted.Sub(origin).Angle()
}

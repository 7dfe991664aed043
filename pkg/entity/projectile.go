package entity

import "realmshard/pkg/geometry"

// ProjectileRadius is the fixed collision radius used for projectile vs.
// target circle-overlap tests.
const ProjectileRadius = 0.15

// Projectile is a single fired shot: ballistic update, lifetime expiry,
// wall kill, and hit-set + pierce bookkeeping.
type Projectile struct {
	Kernel

	OwnerID   ID
	OwnerSide Side
	DefID     string

	Velocity geometry.Vec2
	Damage   float64
	Pierce   bool

	Lifetime  float64 // seconds remaining
	SpawnedAt float64 // absolute instance-clock seconds

	hitSet map[ID]struct{}
}

// NewProjectile constructs a live projectile.
func NewProjectile(pos geometry.Vec2, velocity geometry.Vec2, defID string, owner ID, side Side, damage, lifetime, spawnedAt float64, pierce bool) *Projectile {
	return &Projectile{
		Kernel:    NewKernel(pos, ProjectileRadius),
		OwnerID:   owner,
		OwnerSide: side,
		DefID:     defID,
		Velocity:  velocity,
		Damage:    damage,
		Pierce:    pierce,
		Lifetime:  lifetime,
		SpawnedAt: spawnedAt,
		hitSet:    make(map[ID]struct{}),
	}
}

// Update advances position and decays remaining lifetime; it does not
// itself test wall collisions, since that depends on the instance map.
func (pr *Projectile) Update(dt float64) {
	pr.Pos = pr.Pos.Add(pr.Velocity.Scale(dt))
	pr.Lifetime -= dt
}

// Expired reports whether the projectile's lifetime has run out.
func (pr *Projectile) Expired() bool { return pr.Lifetime <= 0 }

// HasHit reports whether id is already in the hit set.
func (pr *Projectile) HasHit(id ID) bool {
	_, ok := pr.hitSet[id]
	return ok
}

// RecordHit adds id to the hit set and, for non-piercing projectiles,
// flags the projectile for removal.
func (pr *Projectile) RecordHit(id ID) {
	pr.hitSet[id] = struct{}{}
	if !pr.Pierce {
		pr.MarkRemove()
	}
}

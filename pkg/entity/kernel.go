package entity

import "realmshard/pkg/geometry"

// Kernel is the base every concrete entity embeds: identity, position,
// collision radius and the remove-flag the cleanup stage drains on.
type Kernel struct {
	ID     ID
	Pos    geometry.Vec2
	Radius float64
	remove bool
}

// NewKernel returns a freshly identified kernel at pos with the given
// collision radius.
func NewKernel(pos geometry.Vec2, radius float64) Kernel {
	return Kernel{ID: NewID(), Pos: pos, Radius: radius}
}

// MarkRemove flags the entity for removal at the next cleanup pass.
func (k *Kernel) MarkRemove() { k.remove = true }

// Removed reports whether the entity is flagged for removal.
func (k *Kernel) Removed() bool { return k.remove }

// Overlaps reports whether this entity's collision circle overlaps another's.
func (k *Kernel) Overlaps(other *Kernel) bool {
	return geometry.CircleOverlap(k.Pos, k.Radius, other.Pos, other.Radius)
}

// Side identifies which faction an entity or a projectile's owner belongs
// to, used to resolve combat opposition.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

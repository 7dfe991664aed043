package entity

import "realmshard/pkg/geometry"

// LootBagRadius is the fixed collision/pickup radius of a dropped bag.
const LootBagRadius = 0.3

// LootBagCapacity is the maximum number of item stacks a single bag holds.
const LootBagCapacity = 8

// LootDespawnSeconds is the lifetime of a freshly spawned bag.
const LootDespawnSeconds = 60

// LootBag is a dropped item container. Invariant: Soulbound implies
// OwnerID is set; an emptied bag is marked for removal immediately.
type LootBag struct {
	Kernel

	Items     []string
	DespawnAt float64 // absolute instance-clock seconds
	OwnerID   ID
	Soulbound bool
}

// NewLootBag constructs a bag with the given items, to despawn at
// spawnedAt+LootDespawnSeconds.
func NewLootBag(pos geometry.Vec2, items []string, ownerID ID, soulbound bool, spawnedAt float64) *LootBag {
	return &LootBag{
		Kernel:    NewKernel(pos, LootBagRadius),
		Items:     items,
		DespawnAt: spawnedAt + LootDespawnSeconds,
		OwnerID:   ownerID,
		Soulbound: soulbound,
	}
}

// VisibleTo reports whether viewer may see this bag: public bags are
// visible to everyone, soulbound bags only to their owner.
func (b *LootBag) VisibleTo(viewer ID) bool {
	return !b.Soulbound || b.OwnerID == viewer
}

// UpdateExpiry marks the bag for removal once now passes its despawn time.
func (b *LootBag) UpdateExpiry(now float64) {
	if now >= b.DespawnAt {
		b.MarkRemove()
	}
}

// PopFirst removes and returns the first item in the bag, marking the bag
// for removal if it becomes empty.
func (b *LootBag) PopFirst() (string, bool) {
	if len(b.Items) == 0 {
		return "", false
	}
	item := b.Items[0]
	b.Items = b.Items[1:]
	if len(b.Items) == 0 {
		b.MarkRemove()
	}
	return item, true
}

// CanMerge reports whether an item may be merged into this bag: same
// owner/soulbound flag and under capacity.
func (b *LootBag) CanMerge(ownerID ID, soulbound bool) bool {
	return b.OwnerID == ownerID && b.Soulbound == soulbound && len(b.Items) < LootBagCapacity
}

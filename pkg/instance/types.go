// Package instance owns the simulation of one game world: its entity
// containers, its immutable map, and the per-tick update pipeline that
// advances players, enemies, projectiles, loot and portals, resolves
// combat, runs the spawn scheduler, and emits AOI-filtered snapshots.
package instance

import (
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// Kind identifies which role an instance plays; it gates whether the
// combat/spawn stages run (safe zones skip them) and how player
// transfer/vault-access rules apply.
type Kind string

const (
	KindNexus   Kind = "nexus"
	KindRealm   Kind = "realm"
	KindDungeon Kind = "dungeon"
	KindVault   Kind = "vault"
)

// DungeonMeta holds the extra bookkeeping carried only by dungeon
// instances, per spec §3.
type DungeonMeta struct {
	BossRoomCenter   geometry.Vec2
	SourceInstanceID string
	BossKilled       bool
	InitialSpawnDone bool

	cachedSpawn      geometry.Vec2
	cachedSpawnIsSet bool
}

// CacheSpawn records the spawn position used by the first player to enter
// a dungeon, so every subsequent arrival reuses the same point.
func (d *DungeonMeta) CacheSpawn(p geometry.Vec2) {
	if !d.cachedSpawnIsSet {
		d.cachedSpawn = p
		d.cachedSpawnIsSet = true
	}
}

// CachedSpawn returns the cached dungeon spawn point, if one has been set.
func (d *DungeonMeta) CachedSpawn() (geometry.Vec2, bool) {
	return d.cachedSpawn, d.cachedSpawnIsSet
}

// Event is one outbound notification produced during Update. The instance
// never talks to sessions directly; the server orchestration layer drains
// the returned events after each tick and routes them through the
// playerId -> session table.
type Event struct {
	Type string // "damage", "death", "lootSpawn", "levelUp", "abilityEffect", "snapshot", "chat", "instanceChange"

	// TargetPlayerID is the sole recipient when set; NilID means broadcast
	// to every session resident in this instance.
	TargetPlayerID entity.ID
	// ExcludePlayerID, when set, is skipped on a broadcast (e.g. the chat
	// sender already rendered their own message locally is not a rule
	// here, but enemy-death broadcasts exclude no one; reserved for future
	// use by the session layer).
	ExcludePlayerID entity.ID

	Data interface{}
}

func broadcastEvent(typ string, data interface{}) Event {
	return Event{Type: typ, TargetPlayerID: entity.NilID, Data: data}
}

func targetedEvent(typ string, target entity.ID, data interface{}) Event {
	return Event{Type: typ, TargetPlayerID: target, Data: data}
}

// Command is a deferred mutation requested off-tick (portal entry,
// pickup, drop, swap, chat, vault transfer, ability use) and applied at
// the head of the next tick's update, per spec §5. It returns any events
// produced by running it.
type Command func(inst *Instance) []Event

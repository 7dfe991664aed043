package instance

import (
	"math/rand"
	"sync"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

const (
	portalInteractRange     = 1.5
	pickupRange             = 1.0
	vaultChestInteractRange = 1.5
	lootMergeRange          = 0.5
	spawnSampleAttempts     = 20
)

// Instance owns everything that lives in one world: the immutable map,
// the content table it spawns from, every entity container, and the
// mutex-serialized command queue the update pipeline drains at the head
// of each tick.
type Instance struct {
	mu sync.Mutex

	ID   string
	Kind Kind
	Map  *geometry.Map

	content *content.Table
	rng     *rand.Rand

	players     map[entity.ID]*entity.Player
	enemies     map[entity.ID]*entity.Enemy
	projectiles map[entity.ID]*entity.Projectile
	loot        map[entity.ID]*entity.LootBag
	portals     map[entity.ID]*entity.Portal
	vaultChest  *entity.VaultChest

	dungeon *DungeonMeta

	clock float64 // accumulated instance-local wall-clock seconds
	tick  uint64

	pending []Command

	classes map[string]content.ClassDef // cached for level-up lookups
}

// New constructs an empty instance of kind over m, using table for all
// content lookups and seed for deterministic-per-instance randomness.
func New(id string, kind Kind, m *geometry.Map, table *content.Table, seed int64) *Instance {
	return &Instance{
		ID:          id,
		Kind:        kind,
		Map:         m,
		content:     table,
		rng:         rand.New(rand.NewSource(seed)),
		players:     make(map[entity.ID]*entity.Player),
		enemies:     make(map[entity.ID]*entity.Enemy),
		projectiles: make(map[entity.ID]*entity.Projectile),
		loot:        make(map[entity.ID]*entity.LootBag),
		portals:     make(map[entity.ID]*entity.Portal),
		classes:     table.Classes,
	}
}

// IsSafeZone reports whether this instance disables combat/spawn stages
// and uses the accelerated safe-zone regen rate, per spec §5.
func (inst *Instance) IsSafeZone() bool {
	return inst.Kind == KindNexus || inst.Kind == KindVault
}

// SetVaultChest places the static vault chest; only meaningful for vault
// instances.
func (inst *Instance) SetVaultChest(chest *entity.VaultChest) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.vaultChest = chest
}

// SetDungeonMeta attaches dungeon bookkeeping; only meaningful for
// dungeon instances.
func (inst *Instance) SetDungeonMeta(meta *DungeonMeta) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.dungeon = meta
}

// Enqueue defers cmd to run at the head of the next tick's update, per
// spec §5's command-queue ordering guarantee.
func (inst *Instance) Enqueue(cmd Command) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.pending = append(inst.pending, cmd)
}

// SetPlayerInput assigns the resident player's most recent input as a
// single atomic write, per spec §5.
func (inst *Instance) SetPlayerInput(id entity.ID, in entity.Input) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if p, ok := inst.players[id]; ok {
		p.LastInput = in
	}
}

func (inst *Instance) spawnPosition() geometry.Vec2 {
	if inst.dungeon != nil {
		if pos, ok := inst.dungeon.CachedSpawn(); ok {
			return pos
		}
	}
	// fall back to the first painted spawn tile, or map center if none.
	for y := 0; y < inst.Map.Height; y++ {
		for x := 0; x < inst.Map.Width; x++ {
			if inst.Map.At(x, y) == geometry.TileSpawn {
				p := geometry.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				if inst.dungeon != nil {
					inst.dungeon.CacheSpawn(p)
				}
				return p
			}
		}
	}
	center := geometry.Vec2{X: float64(inst.Map.Width) / 2, Y: float64(inst.Map.Height) / 2}
	if inst.dungeon != nil {
		inst.dungeon.CacheSpawn(center)
	}
	return center
}

// AddPlayer places p at the instance's chosen spawn position and sets its
// instance back-reference. For dungeons, the first arrival's spawn is
// cached and reused for every subsequent arrival.
func (inst *Instance) AddPlayer(p *entity.Player) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	p.Pos = inst.spawnPosition()
	p.InstanceID = inst.ID
	inst.players[p.ID] = p
}

// RemovePlayer detaches the player and returns it for the caller to
// persist; returns nil if the player was not resident.
func (inst *Instance) RemovePlayer(id entity.ID) *entity.Player {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	p := inst.players[id]
	delete(inst.players, id)
	return p
}

// Player returns the resident player by id, or nil.
func (inst *Instance) Player(id entity.ID) *entity.Player {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.players[id]
}

// PlayerCount returns the number of resident players, used by the
// orchestration layer to decide when a vault or dungeon instance is
// empty and should be reaped.
func (inst *Instance) PlayerCount() int {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return len(inst.players)
}

// PlayerIDs returns the ids of every resident player, used by the
// orchestration layer to fan a broadcast event out to every session
// resident in this instance.
func (inst *Instance) PlayerIDs() []entity.ID {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	ids := make([]entity.ID, 0, len(inst.players))
	for id := range inst.players {
		ids = append(ids, id)
	}
	return ids
}

// Clock returns the instance's accumulated local wall-clock seconds, used
// by the orchestration layer to stamp a freshly dropped portal's expiry.
func (inst *Instance) Clock() float64 {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.clock
}

// TryEnterPortal returns the portal if player is within
// PORTAL_INTERACT_RANGE of it; it does not itself move the player.
func (inst *Instance) TryEnterPortal(player *entity.Player, portalID entity.ID) (*entity.Portal, bool) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	portal, ok := inst.portals[portalID]
	if !ok {
		return nil, false
	}
	if player.Pos.Distance(portal.Pos) > portalInteractRange {
		return nil, false
	}
	return portal, true
}

// TryInteractVaultChest reports whether player is within
// VAULT_CHEST_INTERACT_RANGE of the instance's vault chest.
func (inst *Instance) TryInteractVaultChest(player *entity.Player) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.vaultChest == nil {
		return false
	}
	return player.Pos.Distance(inst.vaultChest.Pos) <= vaultChestInteractRange
}

// TryPickupLoot attempts to move a bag's first item into the player's
// inventory, per spec §4.2.
func (inst *Instance) TryPickupLoot(player *entity.Player, lootID entity.ID) (itemID string, ok bool) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	bag, exists := inst.loot[lootID]
	if !exists {
		return "", false
	}
	if player.Pos.Distance(bag.Pos) > pickupRange {
		return "", false
	}
	if bag.Soulbound && bag.OwnerID != player.ID {
		return "", false
	}

	slot := firstEmptySlot(player.Inventory[:])
	if slot < 0 {
		return "", false
	}

	item, popped := bag.PopFirst()
	if !popped {
		return "", false
	}
	player.Inventory[slot] = item
	return item, true
}

func firstEmptySlot(slots []string) int {
	for i, s := range slots {
		if s == "" {
			return i
		}
	}
	return -1
}

// DropItem removes the item in player's inventory slot, merges it into a nearby
// compatible bag or spawns a fresh one, per spec §4.2.
func (inst *Instance) DropItem(player *entity.Player, slot int) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if slot < 0 || slot >= len(player.Inventory) {
		return
	}
	item := player.Inventory[slot]
	if item == "" {
		return
	}
	player.Inventory[slot] = ""

	soulbound := false
	if def, ok := inst.content.Items[item]; ok {
		soulbound = def.Soulbound
	}

	owner := entity.NilID
	if soulbound {
		owner = player.ID
	}

	for _, bag := range inst.loot {
		if bag.Pos.Distance(player.Pos) < lootMergeRange && bag.CanMerge(owner, soulbound) {
			bag.Items = append(bag.Items, item)
			return
		}
	}

	bag := entity.NewLootBag(player.Pos, []string{item}, owner, soulbound, inst.clock)
	inst.loot[bag.ID] = bag
}

// SpawnEnemy creates a live enemy from its content definition at pos.
func (inst *Instance) SpawnEnemy(defID string, pos geometry.Vec2) *entity.Enemy {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	def, ok := inst.content.Enemies[defID]
	if !ok {
		return nil
	}
	e := entity.NewEnemy(def, pos)
	inst.enemies[e.ID] = e
	return e
}

// SpawnProjectile creates a live projectile.
func (inst *Instance) SpawnProjectile(pos, velocity geometry.Vec2, defID string, owner entity.ID, side entity.Side, damage, lifetime float64, pierce bool) *entity.Projectile {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	pr := entity.NewProjectile(pos, velocity, defID, owner, side, damage, lifetime, inst.clock, pierce)
	inst.projectiles[pr.ID] = pr
	return pr
}

// AddPortal registers a portal entity in this instance.
func (inst *Instance) AddPortal(p *entity.Portal) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.portals[p.ID] = p
}

// WithPlayer runs fn with inst's lock held if id is resident, for callers
// outside the tick pipeline (admin commands, vault transfers) that need to
// mutate a live player's fields without racing the update loop. Reports
// whether id was resident.
func (inst *Instance) WithPlayer(id entity.ID, fn func(*entity.Player)) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	p, ok := inst.players[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}


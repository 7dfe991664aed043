package instance

import (
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// AOIRadius is the Euclidean tile radius within which a player's snapshot
// includes other entities, per spec §6. Defaults to the spec's tunable
// constant; the server orchestration layer overwrites it from config at
// startup via SetAOIRadius.
var AOIRadius = 15.0

// SetAOIRadius overrides the area-of-interest radius used by every
// instance's snapshot emitter.
func SetAOIRadius(radius float64) {
	AOIRadius = radius
}

// playerView, enemyView etc. carry only the fields the client needs to
// render, per spec §4.2 stage 5.
type playerView struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Pos   vecView `json:"pos"`
	HP    float64 `json:"hp"`
	MaxHP float64 `json:"maxHp"`
	Level int     `json:"level"`
}

type enemyView struct {
	ID    string  `json:"id"`
	DefID string  `json:"defId"`
	Pos   vecView `json:"pos"`
	HP    float64 `json:"hp"`
	MaxHP float64 `json:"maxHp"`
}

type projectileView struct {
	ID  string  `json:"id"`
	Pos vecView `json:"pos"`
}

type lootView struct {
	ID  string  `json:"id"`
	Pos vecView `json:"pos"`
}

type portalView struct {
	ID      string  `json:"id"`
	Pos     vecView `json:"pos"`
	Visible bool    `json:"visible"`
}

type vecView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type snapshotPayload struct {
	Tick        uint64           `json:"tick"`
	Players     []playerView     `json:"players"`
	Enemies     []enemyView      `json:"enemies"`
	Projectiles []projectileView `json:"projectiles"`
	Loot        []lootView       `json:"loot"`
	Portals     []portalView     `json:"portals"`
}

func toVecView(v geometry.Vec2) vecView { return vecView{X: v.X, Y: v.Y} }

// emitSnapshots builds and returns one targeted "snapshot" event per
// resident player, each filtered to entities within AOIRadius and with
// soulbound loot hidden from non-owners (stage 5).
func (inst *Instance) emitSnapshots(tick uint64) []Event {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	index := geometry.NewSpatialIndex(float64(inst.Map.Width), float64(inst.Map.Height))

	players := make(map[string]playerView, len(inst.players))
	for id, p := range inst.players {
		key := id.String()
		index.Insert(key, p.Pos)
		players[key] = playerView{ID: key, Name: p.Name, Pos: toVecView(p.Pos), HP: p.HP, MaxHP: p.MaxHP, Level: p.Level}
	}

	enemies := make(map[string]enemyView, len(inst.enemies))
	for id, e := range inst.enemies {
		key := id.String()
		index.Insert(key, e.Pos)
		enemies[key] = enemyView{ID: key, DefID: e.DefID, Pos: toVecView(e.Pos), HP: e.HP, MaxHP: e.MaxHP}
	}

	projectiles := make(map[string]projectileView, len(inst.projectiles))
	for id, pr := range inst.projectiles {
		key := id.String()
		index.Insert(key, pr.Pos)
		projectiles[key] = projectileView{ID: key, Pos: toVecView(pr.Pos)}
	}

	loot := make(map[string]lootView, len(inst.loot))
	lootOwners := make(map[string]entity.ID, len(inst.loot))
	lootSoulbound := make(map[string]bool, len(inst.loot))
	for id, bag := range inst.loot {
		key := id.String()
		index.Insert(key, bag.Pos)
		loot[key] = lootView{ID: key, Pos: toVecView(bag.Pos)}
		lootOwners[key] = bag.OwnerID
		lootSoulbound[key] = bag.Soulbound
	}

	portals := make(map[string]portalView, len(inst.portals))
	for id, p := range inst.portals {
		key := id.String()
		index.Insert(key, p.Pos)
		portals[key] = portalView{ID: key, Pos: toVecView(p.Pos), Visible: p.Visible}
	}

	var events []Event
	for viewerID, viewer := range inst.players {
		nearby := index.GetObjectsInRadius(viewer.Pos, AOIRadius)
		payload := snapshotPayload{Tick: tick}

		for _, key := range nearby {
			switch {
			case players[key].ID != "":
				payload.Players = append(payload.Players, players[key])
			case enemies[key].ID != "":
				payload.Enemies = append(payload.Enemies, enemies[key])
			case projectiles[key].ID != "":
				payload.Projectiles = append(payload.Projectiles, projectiles[key])
			case portals[key].ID != "":
				payload.Portals = append(payload.Portals, portals[key])
			case loot[key].ID != "":
				if lootSoulbound[key] && lootOwners[key] != viewerID {
					continue
				}
				payload.Loot = append(payload.Loot, loot[key])
			}
		}

		events = append(events, targetedEvent("snapshot", viewerID, payload))
	}
	return events
}

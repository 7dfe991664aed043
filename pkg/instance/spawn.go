package instance

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

// runSpawnScheduler runs stage 3: for each spawn region, accumulate a
// per-region timer; past 1/rate with room under MaxConcurrent, sample a
// walkable position and spawn a weighted-random enemy type. Safe zones and,
// once the initial bulk spawn has run, dungeons are inert.
func (inst *Instance) runSpawnScheduler(dt float64) []Event {
	if inst.IsSafeZone() {
		return nil
	}
	if inst.dungeon != nil && inst.dungeon.InitialSpawnDone {
		return nil
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	var events []Event
	for _, region := range inst.Map.SpawnRegions {
		events = append(events, inst.tickSpawnRegion(region, dt)...)
	}
	return events
}

func (inst *Instance) tickSpawnRegion(region *geometry.SpawnRegion, dt float64) []Event {
	region.TickTimer(dt)
	if region.Rate <= 0 {
		return nil
	}
	if inst.regionPopulation(region) >= region.MaxConcurrent {
		return nil
	}
	if !region.ReadyToSpawn(1 / region.Rate) {
		return nil
	}

	defID := inst.weightedEnemyChoice(region.Weights)
	if defID == "" {
		return nil
	}

	pos, ok := inst.Map.RandomWalkablePosition(region.X, region.Y, region.Width, region.Height, 0.35, spawnSampleAttempts, inst.rng)
	if !ok {
		return nil
	}

	def, ok := inst.content.Enemies[defID]
	if !ok {
		return nil
	}
	e := entity.NewEnemy(def, pos)
	inst.enemies[e.ID] = e

	return []Event{broadcastEvent("enemySpawn", map[string]interface{}{
		"enemyId": e.ID,
		"defId":   defID,
		"pos":     pos,
	})}
}

// PopulateDungeonSpawns fills every spawn region up to its MaxConcurrent
// immediately and marks the dungeon's initial spawn complete, per spec
// §4.7's dungeon-creation step ("the initial enemy set spawned en
// masse"); the regular trickle scheduler is inert for the rest of the
// dungeon's lifetime once this has run.
func (inst *Instance) PopulateDungeonSpawns() {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	for _, region := range inst.Map.SpawnRegions {
		for inst.regionPopulation(region) < region.MaxConcurrent {
			defID := inst.weightedEnemyChoice(region.Weights)
			if defID == "" {
				break
			}
			pos, ok := inst.Map.RandomWalkablePosition(region.X, region.Y, region.Width, region.Height, 0.35, spawnSampleAttempts, inst.rng)
			if !ok {
				break
			}
			def, ok := inst.content.Enemies[defID]
			if !ok {
				break
			}
			e := entity.NewEnemy(def, pos)
			inst.enemies[e.ID] = e
		}
	}

	if inst.dungeon != nil {
		inst.dungeon.InitialSpawnDone = true
	}
}

func (inst *Instance) regionPopulation(region *geometry.SpawnRegion) int {
	n := 0
	for _, e := range inst.enemies {
		if region.Contains(int(e.Pos.X), int(e.Pos.Y)) {
			n++
		}
	}
	return n
}

// weightedEnemyChoice picks a definition id from weights with probability
// proportional to its weight. Go's map iteration order is randomized per
// process, so the cumulative-roll walk below runs over ids sorted
// lexically rather than ranged directly off the map: without that, the
// same inst.rng seed could select a different id on different runs
// depending on which key the runtime happened to visit first.
func (inst *Instance) weightedEnemyChoice(weights map[string]float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return ""
	}

	ids := maps.Keys(weights)
	slices.Sort(ids)

	roll := inst.rng.Float64() * total
	for _, id := range ids {
		roll -= weights[id]
		if roll <= 0 {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

package geometry

import "math/rand"

// room is one rectangle placed during dungeon generation.
type room struct {
	x, y, w, h int
	isBoss     bool
}

func (r room) center() (int, int) {
	return r.x + r.w/2, r.y + r.h/2
}

func (r room) overlaps(o room, buffer int) bool {
	return r.x-buffer < o.x+o.w && r.x+r.w+buffer > o.x &&
		r.y-buffer < o.y+o.h && r.y+r.h+buffer > o.y
}

// direction weights per spec §4.9: right 0.6, down 0.2, up 0.2.
type direction int

const (
	dirRight direction = iota
	dirDown
	dirUp
)

func pickDirection(rng *rand.Rand) direction {
	roll := rng.Float64()
	switch {
	case roll < 0.6:
		return dirRight
	case roll < 0.8:
		return dirDown
	default:
		return dirUp
	}
}

// DungeonParams controls procedural dungeon generation.
type DungeonParams struct {
	Width, Height int
	Seed          int64
	MinRooms      int // 12
	MaxRooms      int // 18
}

// DefaultDungeonParams returns the spec's default branching-room parameters.
func DefaultDungeonParams(seed int64) DungeonParams {
	return DungeonParams{
		Width:    128,
		Height:   128,
		Seed:     seed,
		MinRooms: 12,
		MaxRooms: 18,
	}
}

// GenerateDungeon builds a branching-room procedural dungeon per spec §4.9:
// a start room at left-center, up to MaxRooms branching rooms chosen by
// weighted direction, corridor-connected, with the rightmost room upsized
// and designated boss room.
func GenerateDungeon(p DungeonParams) (*Map, Vec2) {
	rng := rand.New(rand.NewSource(p.Seed))

	targetRooms := p.MinRooms + rng.Intn(p.MaxRooms-p.MinRooms+1)

	start := room{
		x: 4,
		y: p.Height/2 - 6,
		w: 8 + rng.Intn(7),
		h: 8 + rng.Intn(7),
	}
	rooms := []room{start}

	cur := start
	for len(rooms) < targetRooms {
		dir := pickDirection(rng)
		size := 8 + rng.Intn(7) // 8..14
		gap := 6 + rng.Intn(7)  // 6..12

		cx, cy := cur.center()
		var next room
		switch dir {
		case dirRight:
			next = room{x: cur.x + cur.w + gap, y: cy - size/2, w: size, h: size}
		case dirDown:
			next = room{x: cx - size/2, y: cur.y + cur.h + gap, w: size, h: size}
		case dirUp:
			next = room{x: cx - size/2, y: cur.y - gap - size, w: size, h: size}
		}

		if next.x < 1 || next.y < 1 || next.x+next.w >= p.Width-1 || next.y+next.h >= p.Height-1 {
			continue
		}

		collides := false
		for _, r := range rooms {
			if next.overlaps(r, 2) {
				collides = true
				break
			}
		}
		if collides {
			continue
		}

		rooms = append(rooms, next)
		cur = next
	}

	bossIdx := 0
	for i, r := range rooms {
		if r.x > rooms[bossIdx].x {
			bossIdx = i
			_ = r
		}
	}
	boss := &rooms[bossIdx]
	boss.isBoss = true
	if boss.w < 12 {
		boss.w = 12
	}
	if boss.h < 12 {
		boss.h = 12
	}

	m := NewMap(p.Width, p.Height)

	for _, r := range rooms {
		tile := TileFloor
		if r.isBoss {
			tile = TileBossFloor
		}
		for y := r.y; y < r.y+r.h; y++ {
			for x := r.x; x < r.x+r.w; x++ {
				m.Set(x, y, tile)
			}
		}
	}

	// start room interior painted with spawn tiles
	for y := start.y + 1; y < start.y+start.h-1; y++ {
		for x := start.x + 1; x < start.x+start.w-1; x++ {
			m.Set(x, y, TileSpawn)
		}
	}

	// connect each consecutive room pair with a 2-tile-wide L-corridor
	// through their centers.
	for i := 1; i < len(rooms); i++ {
		ax, ay := rooms[i-1].center()
		bx, by := rooms[i].center()
		carveLCorridor(m, ax, ay, bx, by)
	}

	spawnPos := Vec2{X: float64(start.x) + float64(start.w)/2, Y: float64(start.y) + float64(start.h)/2}

	for _, r := range rooms {
		region := &SpawnRegion{X: r.x, Y: r.y, Width: r.w, Height: r.h}
		if r.isBoss {
			m.SpawnRegions = append(m.SpawnRegions,
				&SpawnRegion{X: r.x, Y: r.y, Width: r.w, Height: r.h, MaxConcurrent: 1, Rate: 1.0 / 300, Weights: map[string]float64{"boss": 1}},
				&SpawnRegion{X: r.x, Y: r.y, Width: r.w, Height: r.h, MaxConcurrent: 4, Rate: 0.2, Weights: map[string]float64{"guardian": 1}},
			)
			continue
		}
		region.MaxConcurrent = 6
		region.Rate = 0.3
		region.Weights = map[string]float64{"minion": 0.7, "guardian": 0.3}
		m.SpawnRegions = append(m.SpawnRegions, region)
	}

	return m, spawnPos
}

func carveLCorridor(m *Map, ax, ay, bx, by int) {
	carveHorizontal(m, ax, bx, ay)
	carveVertical(m, ay, by, bx)
}

func carveHorizontal(m *Map, x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if m.At(x, y) == TileVoid {
			m.Set(x, y, TileFloor)
		}
		if m.At(x, y+1) == TileVoid {
			m.Set(x, y+1, TileFloor)
		}
	}
}

func carveVertical(m *Map, y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if m.At(x, y) == TileVoid {
			m.Set(x, y, TileFloor)
		}
		if m.At(x+1, y) == TileVoid {
			m.Set(x+1, y, TileFloor)
		}
	}
}

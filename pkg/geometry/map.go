package geometry

import "math/rand"

// Tile is a single cell code in a Map's tile grid.
type Tile uint8

const (
	TileVoid Tile = iota
	TileFloor
	TileWall
	TileWater
	TileLava
	TileSpawn
	TileBossFloor
)

// Walkable reports whether an entity may occupy this tile.
func (t Tile) Walkable() bool {
	switch t {
	case TileFloor, TileSpawn, TileBossFloor:
		return true
	default:
		return false
	}
}

// SpawnRegion describes a rectangular area from which the instance spawn
// scheduler samples enemy spawns.
type SpawnRegion struct {
	X, Y, Width, Height int
	// Weights maps enemy content ids to relative spawn probability.
	Weights map[string]float64
	// MaxConcurrent caps live population sampled from this region.
	MaxConcurrent int
	// Rate is spawns per second once under MaxConcurrent.
	Rate float64

	timer float64
}

// Contains reports whether (x,y) lies within the region's rectangle.
func (r *SpawnRegion) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// TickTimer accumulates dt seconds onto the region's spawn timer.
func (r *SpawnRegion) TickTimer(dt float64) { r.timer += dt }

// ReadyToSpawn reports whether the accumulated timer has passed threshold
// seconds, consuming it (subtracting threshold) if so.
func (r *SpawnRegion) ReadyToSpawn(threshold float64) bool {
	if r.timer < threshold {
		return false
	}
	r.timer -= threshold
	return true
}

// Map is the immutable tile grid and spawn-region set for one instance.
type Map struct {
	Width, Height int
	Tiles         []Tile
	SpawnRegions  []*SpawnRegion
}

// NewMap allocates a Width x Height grid filled with TileVoid.
func NewMap(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
}

// At returns the tile at (x,y), or TileVoid if out of bounds.
func (m *Map) At(x, y int) Tile {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return TileVoid
	}
	return m.Tiles[y*m.Width+x]
}

// Set writes the tile at (x,y); out-of-bounds writes are ignored.
func (m *Map) Set(x, y int, t Tile) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Tiles[y*m.Width+x] = t
}

// WalkableAt reports whether the tile containing the real-valued point is
// walkable.
func (m *Map) WalkableAt(p Vec2) bool {
	return m.At(int(p.X), int(p.Y)).Walkable()
}

// CanOccupy tests the five-point collision sample (center + four radius
// corners) required by the player movement spec: every sampled tile must be
// walkable for the position to be valid.
func (m *Map) CanOccupy(p Vec2, radius float64) bool {
	points := [5]Vec2{
		p,
		{p.X - radius, p.Y - radius},
		{p.X + radius, p.Y - radius},
		{p.X - radius, p.Y + radius},
		{p.X + radius, p.Y + radius},
	}
	for _, pt := range points {
		if !m.WalkableAt(pt) {
			return false
		}
	}
	return true
}

// RandomWalkablePosition samples up to attempts random points inside the
// rectangle (rx,ry,rw,rh) and returns the first walkable one found.
func (m *Map) RandomWalkablePosition(rx, ry, rw, rh int, radius float64, attempts int, rng *rand.Rand) (Vec2, bool) {
	for i := 0; i < attempts; i++ {
		x := float64(rx) + rng.Float64()*float64(rw)
		y := float64(ry) + rng.Float64()*float64(rh)
		p := Vec2{X: x, Y: y}
		if m.CanOccupy(p, radius) {
			return p, true
		}
	}
	return Vec2{}, false
}

// TileArray returns a flat copy of the tile grid for wire transmission
// (instance-change payload).
func (m *Map) TileArray() []Tile {
	out := make([]Tile, len(m.Tiles))
	copy(out, m.Tiles)
	return out
}

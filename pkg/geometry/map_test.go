package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTile_Walkable(t *testing.T) {
	tests := []struct {
		tile Tile
		want bool
	}{
		{TileVoid, false},
		{TileFloor, true},
		{TileWall, false},
		{TileWater, false},
		{TileLava, false},
		{TileSpawn, true},
		{TileBossFloor, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tile.Walkable())
	}
}

func TestMap_AtSetOutOfBounds(t *testing.T) {
	m := NewMap(4, 4)
	m.Set(1, 1, TileFloor)
	assert.Equal(t, TileFloor, m.At(1, 1))
	assert.Equal(t, TileVoid, m.At(-1, 0))
	assert.Equal(t, TileVoid, m.At(10, 10))

	m.Set(-1, 0, TileFloor) // ignored, must not panic
	assert.Equal(t, TileVoid, m.At(-1, 0))
}

func TestMap_CanOccupy(t *testing.T) {
	m := NewMap(10, 10)
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			m.Set(x, y, TileFloor)
		}
	}

	assert.True(t, m.CanOccupy(Vec2{X: 5, Y: 5}, 0.35))
	assert.False(t, m.CanOccupy(Vec2{X: 2, Y: 5}, 0.35))
}

func TestMap_RandomWalkablePosition(t *testing.T) {
	m := NewMap(10, 10)
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			m.Set(x, y, TileFloor)
		}
	}
	rng := rand.New(rand.NewSource(1))

	pos, ok := m.RandomWalkablePosition(2, 2, 6, 6, 0.35, 20, rng)
	assert.True(t, ok)
	assert.True(t, m.CanOccupy(pos, 0.35))

	_, ok = m.RandomWalkablePosition(0, 0, 1, 1, 0.35, 5, rng)
	assert.False(t, ok)
}

func TestSpawnRegion_Contains(t *testing.T) {
	r := &SpawnRegion{X: 2, Y: 2, Width: 4, Height: 4}
	assert.True(t, r.Contains(3, 3))
	assert.False(t, r.Contains(10, 10))
}

func TestMap_TileArray_IsCopy(t *testing.T) {
	m := NewMap(2, 2)
	m.Set(0, 0, TileFloor)
	arr := m.TileArray()
	arr[0] = TileWall
	assert.Equal(t, TileFloor, m.At(0, 0))
}

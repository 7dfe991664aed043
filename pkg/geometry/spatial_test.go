package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialIndex_InsertAndQuery(t *testing.T) {
	idx := NewSpatialIndex(100, 100)
	idx.Insert("a", Vec2{X: 10, Y: 10})
	idx.Insert("b", Vec2{X: 50, Y: 50})
	idx.Insert("c", Vec2{X: 12, Y: 10})

	near := idx.GetObjectsInRadius(Vec2{X: 10, Y: 10}, 5)
	assert.ElementsMatch(t, []string{"a", "c"}, near)
}

func TestSpatialIndex_Move(t *testing.T) {
	idx := NewSpatialIndex(100, 100)
	idx.Insert("a", Vec2{X: 10, Y: 10})
	idx.Insert("a", Vec2{X: 90, Y: 90})

	near := idx.GetObjectsInRadius(Vec2{X: 10, Y: 10}, 5)
	assert.Empty(t, near)

	near = idx.GetObjectsInRadius(Vec2{X: 90, Y: 90}, 5)
	assert.Equal(t, []string{"a"}, near)
}

func TestSpatialIndex_Remove(t *testing.T) {
	idx := NewSpatialIndex(100, 100)
	idx.Insert("a", Vec2{X: 10, Y: 10})
	idx.Remove("a")

	near := idx.GetObjectsInRadius(Vec2{X: 10, Y: 10}, 5)
	assert.Empty(t, near)
}

func TestSpatialIndex_Clear(t *testing.T) {
	idx := NewSpatialIndex(100, 100)
	idx.Insert("a", Vec2{X: 10, Y: 10})
	idx.Clear()

	near := idx.GetObjectsInRadius(Vec2{X: 10, Y: 10}, 5)
	assert.Empty(t, near)
}

func TestSpatialIndex_SplitOnOverCapacity(t *testing.T) {
	idx := NewSpatialIndex(100, 100)
	for i := 0; i < spatialNodeCapacity+4; i++ {
		idx.Insert(string(rune('a'+i)), Vec2{X: float64(i), Y: float64(i)})
	}
	near := idx.GetObjectsInRadius(Vec2{X: 0, Y: 0}, 200)
	assert.Len(t, near, spatialNodeCapacity+4)
}

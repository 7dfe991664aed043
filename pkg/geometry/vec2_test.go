package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_AddSub(t *testing.T) {
	a := Vec2{X: 1, Y: 2}
	b := Vec2{X: 3, Y: 4}
	assert.Equal(t, Vec2{X: 4, Y: 6}, a.Add(b))
	assert.Equal(t, Vec2{X: -2, Y: -2}, a.Sub(b))
}

func TestVec2_Length_Distance(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	assert.InDelta(t, 5, v.Length(), 1e-9)
	assert.InDelta(t, 5, Vec2{}.Distance(v), 1e-9)
}

func TestVec2_Normalized(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	n := v.Normalized()
	assert.InDelta(t, 1, n.Length(), 1e-9)

	zero := Vec2{}.Normalized()
	assert.Equal(t, Vec2{}, zero)
}

func TestVec2_ClampMagnitude(t *testing.T) {
	v := Vec2{X: 10, Y: 0}
	clamped := v.ClampMagnitude(3)
	assert.InDelta(t, 3, clamped.Length(), 1e-9)

	small := Vec2{X: 1, Y: 0}
	assert.Equal(t, small, small.ClampMagnitude(3))
}

func TestFromAngle_Angle_RoundTrip(t *testing.T) {
	angle := math.Pi / 4
	v := FromAngle(angle)
	assert.InDelta(t, angle, v.Angle(), 1e-9)
}

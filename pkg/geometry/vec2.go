// Package geometry provides the tile grid, collision primitives, spawn-region
// sampling and procedural dungeon generation used by every game instance.
package geometry

import "math"

// Vec2 is a real-valued 2D vector in tile units.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

// Normalized returns v scaled to unit length, or the zero vector if v is
// (near) zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l < 1e-9 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// ClampMagnitude scales v down so its length never exceeds max; v is
// returned unchanged if already within range.
func (v Vec2) ClampMagnitude(max float64) Vec2 {
	l := v.Length()
	if l <= max || l < 1e-9 {
		return v
	}
	return v.Scale(max / l)
}

// FromAngle builds a unit vector pointing at the given angle in radians,
// counterclockwise from +x.
func FromAngle(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Angle returns the angle of v in radians, counterclockwise from +x.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

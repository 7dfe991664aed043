package geometry

// Move attempts to relocate an entity of the given radius from `from` by
// `delta`. It tries the full diagonal move first; if blocked, it slides
// along the x-axis only, then the y-axis only, matching the spec's
// wall-slide movement rule. Returns the resulting position.
func Move(m *Map, from Vec2, delta Vec2, radius float64) Vec2 {
	full := from.Add(delta)
	if m.CanOccupy(full, radius) {
		return full
	}

	xOnly := Vec2{X: from.X + delta.X, Y: from.Y}
	if m.CanOccupy(xOnly, radius) {
		return xOnly
	}

	yOnly := Vec2{X: from.X, Y: from.Y + delta.Y}
	if m.CanOccupy(yOnly, radius) {
		return yOnly
	}

	return from
}

// CircleOverlap tests circle-circle overlap between two entities for combat
// hit detection.
func CircleOverlap(aPos Vec2, aRadius float64, bPos Vec2, bRadius float64) bool {
	return aPos.Distance(bPos) <= aRadius+bRadius
}

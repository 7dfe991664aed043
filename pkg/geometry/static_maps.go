package geometry

// GenerateNexusMap builds the standing safe-zone hub map: an open floor with
// no spawn regions (nexus disables the spawn-scheduler stage entirely).
func GenerateNexusMap(width, height int) (*Map, Vec2) {
	m := NewMap(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			m.Set(x, y, TileFloor)
		}
	}
	center := Vec2{X: float64(width) / 2, Y: float64(height) / 2}
	cx, cy := int(center.X), int(center.Y)
	for y := cy - 2; y <= cy+2; y++ {
		for x := cx - 2; x <= cx+2; x++ {
			m.Set(x, y, TileSpawn)
		}
	}
	return m, center
}

// GenerateRealmMap builds the standing open hostile world with a scattering
// of enemy spawn regions.
func GenerateRealmMap(width, height int) (*Map, Vec2) {
	m := NewMap(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			m.Set(x, y, TileFloor)
		}
	}

	spawn := Vec2{X: float64(width) / 2, Y: float64(height) / 2}
	cx, cy := int(spawn.X), int(spawn.Y)
	for y := cy - 2; y <= cy+2; y++ {
		for x := cx - 2; x <= cx+2; x++ {
			m.Set(x, y, TileSpawn)
		}
	}

	regionW, regionH := 16, 16
	for gy := 0; gy+regionH < height; gy += regionH + 4 {
		for gx := 0; gx+regionW < width; gx += regionW + 4 {
			if gx < cx+regionW && gx+regionW > cx-regionW && gy < cy+regionH && gy+regionH > cy-regionH {
				continue
			}
			m.SpawnRegions = append(m.SpawnRegions, &SpawnRegion{
				X: gx, Y: gy, Width: regionW, Height: regionH,
				MaxConcurrent: 8,
				Rate:          0.25,
				Weights:       map[string]float64{"pirate": 0.5, "demon": 0.2, "ghost": 0.3},
			})
		}
	}

	return m, spawn
}

// GenerateVaultMap builds the tiny fixed-layout per-account vault room
// containing a single vault chest at its center.
func GenerateVaultMap() (m *Map, spawn Vec2, chestPos Vec2) {
	const size = 9
	m = NewMap(size, size)
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			m.Set(x, y, TileFloor)
		}
	}
	chestPos = Vec2{X: size / 2, Y: size / 2}
	spawn = Vec2{X: size / 2, Y: float64(size) - 2}
	return m, spawn, chestPos
}

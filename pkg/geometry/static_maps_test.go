package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNexusMap(t *testing.T) {
	m, spawn := GenerateNexusMap(40, 40)
	assert.True(t, m.CanOccupy(spawn, 0.35))
	assert.Empty(t, m.SpawnRegions)
}

func TestGenerateRealmMap(t *testing.T) {
	m, spawn := GenerateRealmMap(80, 80)
	assert.True(t, m.CanOccupy(spawn, 0.35))
	assert.NotEmpty(t, m.SpawnRegions)
}

func TestGenerateVaultMap(t *testing.T) {
	m, spawn, chest := GenerateVaultMap()
	assert.True(t, m.CanOccupy(spawn, 0.35))
	assert.True(t, m.WalkableAt(chest))
}

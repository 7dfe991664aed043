package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDir_ReturnsEmptyTable(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, table.Classes)
	assert.Empty(t, table.Enemies)
}

func TestLoad_PartialContentSet(t *testing.T) {
	dir := t.TempDir()
	enemies := `
- id: slime
  name: Slime
  max_hp: 20
  defense: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "enemies.yaml"), []byte(enemies), 0o644))

	table, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, table.Enemies, 1)
	assert.Equal(t, "Slime", table.Enemies["slime"].Name)
	assert.Empty(t, table.Classes)
}

func TestLoad_FullContentSet(t *testing.T) {
	dir := t.TempDir()
	classes := `
- id: warrior
  name: Warrior
  weapon_type: sword
  ability_type: shout
  armor_type: plate
  base_hp: 150
  base_mp: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classes.yaml"), []byte(classes), 0o644))

	table, err := Load(dir)
	require.NoError(t, err)
	require.Contains(t, table.Classes, "warrior")
	assert.Equal(t, 150.0, table.Classes["warrior"].BaseHP)
}

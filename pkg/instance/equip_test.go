package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
)

func TestSwapItems_SelfSwapRejected(t *testing.T) {
	inst := New("realm-test", KindRealm, testMap(5, 5), testTable(), 1)
	p := entity.NewPlayer("a", "a", content.ClassDef{}, geometry.Vec2{})

	assert.False(t, inst.SwapItems(p, 4, 4))
}

func TestSwapItems_OutOfRangeRejected(t *testing.T) {
	inst := New("realm-test", KindRealm, testMap(5, 5), testTable(), 1)
	p := entity.NewPlayer("a", "a", content.ClassDef{}, geometry.Vec2{})

	assert.False(t, inst.SwapItems(p, -1, 4))
	assert.False(t, inst.SwapItems(p, 4, totalSlotCount))
}

func TestSwapItems_InventoryToInventoryAlwaysAllowed(t *testing.T) {
	inst := New("realm-test", KindRealm, testMap(5, 5), testTable(), 1)
	p := entity.NewPlayer("a", "a", content.ClassDef{}, geometry.Vec2{})
	p.Inventory[0] = "potion_hp"
	p.Inventory[1] = ""

	assert.True(t, inst.SwapItems(p, 4, 5))
	assert.Equal(t, "", p.Inventory[0])
	assert.Equal(t, "potion_hp", p.Inventory[1])
}

func TestSwapItems_IncompatibleWeaponTypeRejected(t *testing.T) {
	table := testTable()
	inst := New("realm-test", KindRealm, testMap(5, 5), table, 1)
	p := entity.NewPlayer("a", "a", table.Classes["wizard"], geometry.Vec2{})

	// starter_staff is type "staff"; put a non-matching weapon def in the
	// inventory to try to equip it into the weapon slot.
	table.Weapons["warrior_sword"] = content.WeaponDef{ID: "warrior_sword", Type: "sword"}
	p.Inventory[0] = "warrior_sword"

	assert.False(t, inst.SwapItems(p, 4, int(entity.SlotWeapon)))
	assert.Equal(t, "starter_staff", p.Equipment[entity.SlotWeapon])
	assert.Equal(t, "warrior_sword", p.Inventory[0])
}

func TestSwapItems_CompatibleWeaponSwapSucceeds(t *testing.T) {
	table := testTable()
	inst := New("realm-test", KindRealm, testMap(5, 5), table, 1)
	p := entity.NewPlayer("a", "a", table.Classes["wizard"], geometry.Vec2{})

	table.Weapons["second_staff"] = content.WeaponDef{ID: "second_staff", Type: "staff"}
	p.Inventory[0] = "second_staff"
	p.HP = p.MaxHP + 1000 // force ClampVitals to have visible work to do

	assert.True(t, inst.SwapItems(p, 4, int(entity.SlotWeapon)))
	assert.Equal(t, "second_staff", p.Equipment[entity.SlotWeapon])
	assert.Equal(t, "starter_staff", p.Inventory[0])
	assert.Equal(t, p.MaxHP, p.HP)
}

func TestSwapItems_RingSlotAcceptsAnyRing(t *testing.T) {
	table := testTable()
	inst := New("realm-test", KindRealm, testMap(5, 5), table, 1)
	p := entity.NewPlayer("a", "a", table.Classes["wizard"], geometry.Vec2{})
	p.Inventory[0] = "ring_of_haste"

	assert.True(t, inst.SwapItems(p, 4, int(entity.SlotRing)))
	assert.Equal(t, "ring_of_haste", p.Equipment[entity.SlotRing])
}

func TestSwapItems_EmptyItemAlwaysFitsEquipmentSlot(t *testing.T) {
	table := testTable()
	inst := New("realm-test", KindRealm, testMap(5, 5), table, 1)
	p := entity.NewPlayer("a", "a", table.Classes["wizard"], geometry.Vec2{})

	assert.True(t, inst.SwapItems(p, int(entity.SlotArmor), 4))
	assert.Equal(t, "", p.Equipment[entity.SlotArmor])
	assert.Equal(t, "starter_robe", p.Inventory[0])
}

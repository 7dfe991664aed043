package instance

import "realmshard/pkg/entity"

// totalSlotCount is the four equipment slots plus InventorySize general
// slots, per spec §4.6's swapItems slot numbering (0..3 equipment, 4..11
// inventory).
const totalSlotCount = 4 + entity.InventorySize

// SwapItems exchanges the contents of two player slots, rejecting the swap
// if either destination is an equipment slot the arriving item is
// incompatible with (weapon-type/ability-type/armor-type must match the
// player's class; the ring slot accepts any ring), per spec §4.6. Returns
// false (a silent no-op) for a self-swap, an out-of-range slot, or an
// incompatible equip.
func (inst *Instance) SwapItems(player *entity.Player, from, to int) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if from == to || from < 0 || from >= totalSlotCount || to < 0 || to >= totalSlotCount {
		return false
	}

	class := inst.classes[player.ClassID]

	itemFrom := inst.slotValue(player, from)
	itemTo := inst.slotValue(player, to)

	weaponType, abilityType, armorType := string(class.WeaponType), string(class.AbilityType), string(class.ArmorType)

	if !inst.slotAccepts(weaponType, abilityType, armorType, to, itemFrom) {
		return false
	}
	if !inst.slotAccepts(weaponType, abilityType, armorType, from, itemTo) {
		return false
	}

	inst.setSlotValue(player, from, itemTo)
	inst.setSlotValue(player, to, itemFrom)
	player.ClampVitals()
	return true
}

func (inst *Instance) slotValue(player *entity.Player, slot int) string {
	if slot < 4 {
		return player.Equipment[slot]
	}
	return player.Inventory[slot-4]
}

func (inst *Instance) setSlotValue(player *entity.Player, slot int, item string) {
	if slot < 4 {
		player.Equipment[slot] = item
		return
	}
	player.Inventory[slot-4] = item
}

// slotAccepts reports whether item may occupy slot, given the player's
// class equipment-type requirements. An empty item always fits; inventory
// slots accept anything.
func (inst *Instance) slotAccepts(weaponType, abilityType, armorType string, slot int, item string) bool {
	if item == "" || slot >= 4 {
		return true
	}
	switch entity.EquipSlot(slot) {
	case entity.SlotWeapon:
		w, ok := inst.content.Weapons[item]
		return ok && string(w.Type) == weaponType
	case entity.SlotAbility:
		a, ok := inst.content.Abilities[item]
		return ok && string(a.Type) == abilityType
	case entity.SlotArmor:
		ar, ok := inst.content.Armors[item]
		return ok && string(ar.Type) == armorType
	case entity.SlotRing:
		_, ok := inst.content.Rings[item]
		return ok
	}
	return true
}

package content

// DefaultTable returns a minimal, self-consistent content set sufficient to
// boot and play: one class, one weapon, one ability, one armor, one ring,
// two projectiles, and a small realm enemy roster including the demon that
// drops dungeon portals and a dungeon boss. It is used when ContentDir has
// no yaml files present, mirroring a zero-configuration bootstrap.
func DefaultTable() *Table {
	t := newEmptyTable()

	t.Classes["wizard"] = ClassDef{
		ID: "wizard", Name: "Wizard",
		WeaponType: "staff", AbilityType: "tome", ArmorType: "robe",
		BaseHP: 100, BaseMP: 100,
		BaseStats:     Stats{Attack: 15, Defense: 3, Speed: 5, Dexterity: 5, Vitality: 5, Wisdom: 10},
		PerLevelStats: Stats{Attack: 1.2, Defense: 0.3, Speed: 0.1, Dexterity: 0.4, Vitality: 0.5, Wisdom: 0.8},
		StartingItems: StartingEquipment{Weapon: "starter_staff", Ability: "starter_tome", Armor: "starter_robe"},
	}

	t.Weapons["starter_staff"] = WeaponDef{
		ID: "starter_staff", Name: "Starter Staff", Type: "staff",
		MinDamage: 15, MaxDamage: 25, RateOfFire: 0.5,
		NumProjectiles: 1, ArcGapRadians: 0, Pierce: false,
		Range: 8, ProjectileSpeed: 16, ProjectileDefID: "basic_bolt",
	}

	t.Abilities["starter_tome"] = AbilityDef{
		ID: "starter_tome", Name: "Starter Tome", Type: "tome",
		MPCost: 20, Cooldown: 4, Kind: AbilityHeal, HealAmount: 40,
	}

	t.Armors["starter_robe"] = ArmorDef{ID: "starter_robe", Name: "Starter Robe", Type: "robe", Defense: 2}

	t.Rings["ring_of_haste"] = RingDef{ID: "ring_of_haste", Name: "Ring of Haste", SpeedBonus: 1}

	t.Projectiles["basic_bolt"] = ProjectileDef{ID: "basic_bolt", Speed: 16, Range: 8}
	t.Projectiles["boss_bolt"] = ProjectileDef{ID: "boss_bolt", Speed: 10, Range: 12}

	t.Items["potion_hp"] = ItemDef{ID: "potion_hp", Name: "Health Potion"}
	t.Items["ring_of_haste"] = ItemDef{ID: "ring_of_haste", Name: "Ring of Haste"}

	t.Enemies["pirate"] = EnemyDef{
		ID: "pirate", Name: "Pirate", MaxHP: 100, Defense: 2, Radius: 0.4, Speed: 2,
		Behavior: BehaviorWander, AcquireRange: 15, XPAward: 20,
		Attacks: []AttackDef{{RateOfFire: 1.2, NumProjectiles: 1, Range: 6, Damage: 12, ProjectileSpeed: 10, ProjectileLife: 0.6}},
		LootTable: []LootEntry{{ItemID: "potion_hp", Chance: 0.3}},
	}

	t.Enemies["ghost"] = EnemyDef{
		ID: "ghost", Name: "Ghost", MaxHP: 60, Defense: 0, Radius: 0.35, Speed: 3,
		Behavior: BehaviorChase, AcquireRange: 15, XPAward: 15,
		Attacks: []AttackDef{{RateOfFire: 1.5, NumProjectiles: 2, ArcGapDegrees: 20, Range: 5, Damage: 8, ProjectileSpeed: 9, ProjectileLife: 0.6}},
	}

	t.Enemies["demon"] = EnemyDef{
		ID: "demon", Name: "Demon", MaxHP: 400, Defense: 6, Radius: 0.5, Speed: 2.2,
		Behavior: BehaviorOrbit, OrbitRange: 5, OrbitSpeed: 0.6, AcquireRange: 15, XPAward: 100,
		Attacks: []AttackDef{{RateOfFire: 0.8, NumProjectiles: 3, ArcGapDegrees: 15, Range: 8, Damage: 20, ProjectileSpeed: 11, ProjectileLife: 0.8, Predictive: true}},
		LootTable:  []LootEntry{{ItemID: "ring_of_haste", Chance: 0.05, Soulbound: true}},
		PortalDrop: &DungeonPortalDrop{Chance: 0.10, ExpirySecs: 120},
	}

	t.Enemies["cube_overlord"] = EnemyDef{
		ID: "cube_overlord", Name: "Cube Overlord", MaxHP: 5000, Defense: 10, Radius: 1.2, Speed: 1.5,
		Behavior: BehaviorStationary, AcquireRange: 20, XPAward: 2000, IsBoss: true,
		Attacks: []AttackDef{
			{RateOfFire: 0.5, NumProjectiles: 8, ArcGapDegrees: 45, Range: 14, Damage: 35, ProjectileSpeed: 9, ProjectileLife: 1.6},
			{RateOfFire: 0.3, NumProjectiles: 12, ArcGapDegrees: 30, Range: 16, Damage: 45, ProjectileSpeed: 11, ProjectileLife: 1.5, Predictive: true},
		},
		Phases: []PhaseDef{
			{HPPercent: 100, AttackDuration: 3, RestDuration: 2, AttackIndices: []int{0}},
			{HPPercent: 66, AttackDuration: 4, RestDuration: 1.5, AttackIndices: []int{0, 1}},
			{HPPercent: 33, AttackDuration: 5, RestDuration: 1, AttackIndices: []int{1}},
		},
		LootTable: []LootEntry{
			{ItemID: "ring_of_haste", Chance: 0.5, Soulbound: true},
			{ItemID: "potion_hp", Chance: 1.0},
		},
	}

	return t
}

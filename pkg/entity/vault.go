package entity

import "realmshard/pkg/geometry"

// VaultChestRadius is the fixed interaction collision radius of the vault
// chest.
const VaultChestRadius = 0.6

// VaultChest is the static interaction point inside a vault instance; the
// vault's actual item contents live in the persistence layer, addressed by
// account id, not on the chest itself.
type VaultChest struct {
	Kernel
}

// NewVaultChest constructs the chest at its fixed position.
func NewVaultChest(pos geometry.Vec2) *VaultChest {
	return &VaultChest{Kernel: NewKernel(pos, VaultChestRadius)}
}

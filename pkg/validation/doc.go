// Package validation sanitizes and validates inbound session messages
// before they reach instance or server-orchestration mutators.
//
// # Creating a Validator
//
//	validator := validation.NewInputValidator(64 * 1024) // 64KB per-message limit
//
// # Validating Messages
//
//	err := validator.ValidateMessage(msgType, data, payloadSize)
//	if err != nil {
//	    return fmt.Errorf("invalid message: %w", err)
//	}
//
// # Supported Message Types
//
// Auth and account:
//   - auth, authToken, logout, register
//
// Character lifecycle:
//   - createCharacter, selectCharacter
//
// Gameplay:
//   - input, shoot, useAbility, pickupLoot, enterPortal, returnToNexus
//
// Social and inventory:
//   - chat, swapItems, dropItem
//
// Vault:
//   - interactVaultChest, vaultTransfer, closeVault
//
// # Validation Rules
//
//   - Usernames/passwords: 1-64 characters, no control characters.
//   - Class ids (createCharacter): 1-64 bytes of lowercase letters, digits,
//     '_' or '-'. No separate character-name field is validated.
//   - Entity ids: must parse as a 128-bit UUID.
//   - Move direction: each axis in [-1.1, 1.1] (1.1 slack before
//     renormalization, per spec).
//   - Chat messages: 1-200 characters after trimming.
//   - Equipment slot indices: 0-11 (0-3 equipment, 4-11 inventory).
//
// # Security Features
//
//   - Payload size enforcement bounds per-message cost.
//   - A top-level object containing a key named __proto__ or constructor
//     is rejected outright as a prototype-pollution shape.
//   - Every string field is checked for valid UTF-8 before further rules
//     apply.
package validation

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// InputValidator validates inbound session messages by type, enforcing a
// maximum payload size and per-type field rules.
type InputValidator struct {
	maxPayloadSize int64
	validators     map[string]func(map[string]interface{}) error
}

// NewInputValidator creates a validator that rejects any payload larger
// than maxPayloadSize bytes.
func NewInputValidator(maxPayloadSize int64) *InputValidator {
	v := &InputValidator{
		maxPayloadSize: maxPayloadSize,
		validators:     make(map[string]func(map[string]interface{}) error),
	}
	v.registerValidators()
	return v
}

// protoPollutionSentinels are top-level keys that make ValidateMessage
// reject a payload with an error.
var protoPollutionSentinels = []string{"__proto__", "constructor"}

// ValidateMessage validates one inbound message: payload size, top-level
// prototype-pollution shape, a known message type, and that type's
// field-level rules.
func (v *InputValidator) ValidateMessage(msgType string, data map[string]interface{}, payloadSize int64) error {
	if payloadSize > v.maxPayloadSize {
		return fmt.Errorf("payload size %d exceeds maximum allowed size %d", payloadSize, v.maxPayloadSize)
	}

	for _, sentinel := range protoPollutionSentinels {
		if _, ok := data[sentinel]; ok {
			return fmt.Errorf("payload contains disallowed key %q", sentinel)
		}
	}

	validator, exists := v.validators[msgType]
	if !exists {
		return fmt.Errorf("unknown message type: %s", msgType)
	}

	return validator(data)
}

func (v *InputValidator) registerValidators() {
	v.validators["auth"] = v.validateAuth
	v.validators["authToken"] = v.validateAuthToken
	v.validators["logout"] = v.validateLogout
	v.validators["register"] = v.validateAuth

	v.validators["createCharacter"] = v.validateCreateCharacter
	v.validators["selectCharacter"] = v.validateSelectCharacter

	v.validators["input"] = v.validateInput
	v.validators["shoot"] = v.validateShoot
	v.validators["useAbility"] = v.validateNoFields
	v.validators["pickupLoot"] = v.validatePickupLoot
	v.validators["enterPortal"] = v.validateEnterPortal
	v.validators["returnToNexus"] = v.validateNoFields

	v.validators["chat"] = v.validateChat
	v.validators["swapItems"] = v.validateSwapItems
	v.validators["dropItem"] = v.validateDropItem

	v.validators["interactVaultChest"] = v.validateNoFields
	v.validators["vaultTransfer"] = v.validateVaultTransfer
	v.validators["closeVault"] = v.validateNoFields
}

func (v *InputValidator) validateNoFields(map[string]interface{}) error { return nil }

func (v *InputValidator) validateAuth(data map[string]interface{}) error {
	user, err := stringField(data, "user")
	if err != nil {
		return err
	}
	if err := validateCredentialString(user, "user"); err != nil {
		return err
	}

	pass, err := stringField(data, "pass")
	if err != nil {
		return err
	}
	return validateCredentialString(pass, "pass")
}

func (v *InputValidator) validateAuthToken(data map[string]interface{}) error {
	token, err := stringField(data, "token")
	if err != nil {
		return err
	}
	return validateSessionToken(token)
}

func (v *InputValidator) validateLogout(data map[string]interface{}) error {
	return v.validateAuthToken(data)
}

func (v *InputValidator) validateCreateCharacter(data map[string]interface{}) error {
	classID, err := stringField(data, "classId")
	if err != nil {
		return err
	}
	return validateIdentifier(classID, "classId")
}

func (v *InputValidator) validateSelectCharacter(data map[string]interface{}) error {
	id, err := stringField(data, "characterId")
	if err != nil {
		return err
	}
	return validateUUID(id)
}

func (v *InputValidator) validateInput(data map[string]interface{}) error {
	moveDir, ok := data["moveDirection"]
	if ok {
		dirMap, ok := moveDir.(map[string]interface{})
		if !ok {
			return fmt.Errorf("moveDirection must be an object with x and y")
		}
		for _, axis := range []string{"x", "y"} {
			val, err := floatField(dirMap, axis)
			if err != nil {
				return err
			}
			if val < -1.1 || val > 1.1 {
				return fmt.Errorf("moveDirection.%s out of range [-1.1, 1.1]: %v", axis, val)
			}
		}
	}

	if _, ok := data["aimAngle"]; ok {
		if _, err := floatField(data, "aimAngle"); err != nil {
			return err
		}
	}

	if shooting, ok := data["shooting"]; ok {
		if _, ok := shooting.(bool); !ok {
			return fmt.Errorf("shooting must be a boolean")
		}
	}

	return nil
}

func (v *InputValidator) validateShoot(data map[string]interface{}) error {
	_, err := floatField(data, "aimAngle")
	return err
}

func (v *InputValidator) validatePickupLoot(data map[string]interface{}) error {
	id, err := stringField(data, "lootId")
	if err != nil {
		return err
	}
	return validateUUID(id)
}

func (v *InputValidator) validateEnterPortal(data map[string]interface{}) error {
	id, err := stringField(data, "portalId")
	if err != nil {
		return err
	}
	return validateUUID(id)
}

func (v *InputValidator) validateChat(data map[string]interface{}) error {
	msg, err := stringField(data, "message")
	if err != nil {
		return err
	}
	return validateChatMessage(msg)
}

const (
	equipSlotCount = 4
	totalSlotCount = equipSlotCount + 8
)

func (v *InputValidator) validateSwapItems(data map[string]interface{}) error {
	from, err := intField(data, "from")
	if err != nil {
		return err
	}
	to, err := intField(data, "to")
	if err != nil {
		return err
	}
	if from < 0 || from >= totalSlotCount || to < 0 || to >= totalSlotCount {
		return fmt.Errorf("slot index out of range [0,%d)", totalSlotCount)
	}
	if from == to {
		return fmt.Errorf("cannot swap a slot with itself")
	}
	return nil
}

func (v *InputValidator) validateDropItem(data map[string]interface{}) error {
	slot, err := intField(data, "slot")
	if err != nil {
		return err
	}
	if slot < 0 || slot >= totalSlotCount {
		return fmt.Errorf("slot index out of range [0,%d)", totalSlotCount)
	}
	return nil
}

func (v *InputValidator) validateVaultTransfer(data map[string]interface{}) error {
	fromVault, ok := data["fromVault"].(bool)
	if !ok {
		return fmt.Errorf("vaultTransfer requires boolean 'fromVault'")
	}
	_ = fromVault

	fromSlot, err := intField(data, "fromSlot")
	if err != nil {
		return err
	}
	toSlot, err := intField(data, "toSlot")
	if err != nil {
		return err
	}
	if fromSlot < 0 || fromSlot >= totalSlotCount || toSlot < 0 || toSlot >= totalSlotCount {
		return fmt.Errorf("slot index out of range [0,%d)", totalSlotCount)
	}
	return nil
}

// field helpers

func stringField(data map[string]interface{}, key string) (string, error) {
	raw, exists := data[key]
	if !exists {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("field %q contains invalid UTF-8", key)
	}
	return s, nil
}

func floatField(data map[string]interface{}, key string) (float64, error) {
	raw, exists := data[key]
	if !exists {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", key)
	}
	return f, nil
}

func intField(data map[string]interface{}, key string) (int, error) {
	f, err := floatField(data, key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// rule helpers

var identifierRegex = regexp.MustCompile(`^[a-z0-9_\-]+$`)

func validateIdentifier(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(id) > 64 {
		return fmt.Errorf("%s too long", field)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func validateUUID(id string) error {
	if !uuidRegex.MatchString(id) {
		return fmt.Errorf("invalid id format: %s", id)
	}
	return nil
}

func validateCredentialString(s, field string) error {
	if len(s) == 0 {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(s) > 64 {
		return fmt.Errorf("%s cannot exceed 64 characters", field)
	}
	for _, r := range s {
		if r < 0x20 {
			return fmt.Errorf("%s contains control characters", field)
		}
	}
	return nil
}

var sessionTokenRegex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

func validateSessionToken(token string) error {
	if !sessionTokenRegex.MatchString(token) {
		return fmt.Errorf("invalid session token format")
	}
	return nil
}

func validateChatMessage(msg string) error {
	trimmed := strings.TrimSpace(msg)
	if len(trimmed) == 0 {
		return fmt.Errorf("chat message cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > 200 {
		return fmt.Errorf("chat message cannot exceed 200 characters")
	}
	return nil
}

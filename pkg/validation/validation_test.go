package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInputValidator(t *testing.T) {
	v := NewInputValidator(1024)
	assert.NotNil(t, v)
	assert.Equal(t, int64(1024), v.maxPayloadSize)

	expected := []string{
		"auth", "authToken", "logout", "register",
		"createCharacter", "selectCharacter",
		"input", "shoot", "useAbility", "pickupLoot", "enterPortal", "returnToNexus",
		"chat", "swapItems", "dropItem",
		"interactVaultChest", "vaultTransfer", "closeVault",
	}
	for _, msgType := range expected {
		_, ok := v.validators[msgType]
		assert.True(t, ok, "message type %s should be registered", msgType)
	}
}

func TestValidateMessage_SizeAndUnknownType(t *testing.T) {
	v := NewInputValidator(100)

	err := v.ValidateMessage("returnToNexus", map[string]interface{}{}, 200)
	assert.ErrorContains(t, err, "exceeds maximum")

	err = v.ValidateMessage("notAType", map[string]interface{}{}, 10)
	assert.ErrorContains(t, err, "unknown message type")
}

func TestValidateMessage_PrototypePollution(t *testing.T) {
	v := NewInputValidator(1024)
	for _, key := range []string{"__proto__", "constructor"} {
		err := v.ValidateMessage("returnToNexus", map[string]interface{}{key: "x"}, 10)
		assert.Error(t, err)
	}
}

func TestValidateMessage_Auth(t *testing.T) {
	v := NewInputValidator(1024)

	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
	}{
		{"valid", map[string]interface{}{"user": "alice", "pass": "secret"}, false},
		{"missing pass", map[string]interface{}{"user": "alice"}, true},
		{"empty user", map[string]interface{}{"user": "", "pass": "secret"}, true},
		{"control char", map[string]interface{}{"user": "alice\x01", "pass": "secret"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateMessage("auth", tt.data, 100)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessage_AuthToken(t *testing.T) {
	v := NewInputValidator(1024)
	token := strings.Repeat("a", 64)

	assert.NoError(t, v.ValidateMessage("authToken", map[string]interface{}{"token": token}, 100))
	assert.Error(t, v.ValidateMessage("authToken", map[string]interface{}{"token": "too-short"}, 100))
}

func TestValidateMessage_Input(t *testing.T) {
	v := NewInputValidator(1024)

	valid := map[string]interface{}{
		"moveDirection": map[string]interface{}{"x": 0.7, "y": -0.7},
		"aimAngle":      1.5,
		"shooting":      true,
	}
	assert.NoError(t, v.ValidateMessage("input", valid, 200))

	outOfRange := map[string]interface{}{
		"moveDirection": map[string]interface{}{"x": 5.0, "y": 0.0},
	}
	assert.Error(t, v.ValidateMessage("input", outOfRange, 200))

	badShooting := map[string]interface{}{"shooting": "yes"}
	assert.Error(t, v.ValidateMessage("input", badShooting, 200))
}

func TestValidateMessage_Chat(t *testing.T) {
	v := NewInputValidator(1024)

	assert.NoError(t, v.ValidateMessage("chat", map[string]interface{}{"message": "gg"}, 100))
	assert.Error(t, v.ValidateMessage("chat", map[string]interface{}{"message": "   "}, 100))
	assert.Error(t, v.ValidateMessage("chat", map[string]interface{}{"message": strings.Repeat("x", 201)}, 300))
}

func TestValidateMessage_SwapItems(t *testing.T) {
	v := NewInputValidator(1024)

	assert.NoError(t, v.ValidateMessage("swapItems", map[string]interface{}{"from": 0.0, "to": 5.0}, 50))
	assert.Error(t, v.ValidateMessage("swapItems", map[string]interface{}{"from": 0.0, "to": 0.0}, 50), "self-swap rejected")
	assert.Error(t, v.ValidateMessage("swapItems", map[string]interface{}{"from": 0.0, "to": 99.0}, 50), "out of range rejected")
}

func TestValidateMessage_VaultTransfer(t *testing.T) {
	v := NewInputValidator(1024)

	valid := map[string]interface{}{"fromVault": true, "fromSlot": 1.0, "toSlot": 5.0}
	assert.NoError(t, v.ValidateMessage("vaultTransfer", valid, 50))

	missing := map[string]interface{}{"fromSlot": 1.0, "toSlot": 5.0}
	assert.Error(t, v.ValidateMessage("vaultTransfer", missing, 50))
}

func TestValidateMessage_NoFieldTypes(t *testing.T) {
	v := NewInputValidator(1024)
	for _, msgType := range []string{"useAbility", "returnToNexus", "interactVaultChest", "closeVault"} {
		assert.NoError(t, v.ValidateMessage(msgType, map[string]interface{}{}, 10))
	}
}

func TestValidateMessage_SelectCharacterAndPickupLoot(t *testing.T) {
	v := NewInputValidator(1024)
	validID := "550e8400-e29b-41d4-a716-446655440000"

	assert.NoError(t, v.ValidateMessage("selectCharacter", map[string]interface{}{"characterId": validID}, 80))
	assert.Error(t, v.ValidateMessage("selectCharacter", map[string]interface{}{"characterId": "not-a-uuid"}, 80))

	assert.NoError(t, v.ValidateMessage("pickupLoot", map[string]interface{}{"lootId": validID}, 80))
	assert.NoError(t, v.ValidateMessage("enterPortal", map[string]interface{}{"portalId": validID}, 80))
}

func TestValidateMessage_CreateCharacter(t *testing.T) {
	v := NewInputValidator(1024)
	assert.NoError(t, v.ValidateMessage("createCharacter", map[string]interface{}{"classId": "wizard"}, 50))
	assert.Error(t, v.ValidateMessage("createCharacter", map[string]interface{}{"classId": "Wizard!"}, 50))
}

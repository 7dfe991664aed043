package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmshard/pkg/entity"
)

func TestHandleRegister_NewAccount(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "hunter2"})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, "acct-alice", s.accountID)
	assert.NotEmpty(t, s.token)
	assert.Equal(t, "hunter2", world.accounts["alice"])
}

func TestHandleRegister_Duplicate(t *testing.T) {
	s, _, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "hunter2"})
	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "other"})

	s.mu.RLock()
	defer s.mu.RUnlock()
	// The second registration fails; the session should not pick up a
	// fresh token/account from it.
	assert.NotEmpty(t, s.accountID)
}

func TestHandleAuth_InvalidCredentials(t *testing.T) {
	s, _, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("auth", map[string]interface{}{"user": "ghost", "pass": "nope"})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Empty(t, s.accountID)
}

func TestHandleSelectCharacter_AttachesAndSetsState(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "hunter2"})
	s.Dispatch("selectCharacter", map[string]interface{}{"characterId": entity.NewID().String()})

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.NotNil(t, s.inst)
	assert.False(t, s.playerID.IsNil())
	assert.Equal(t, s.playerID, world.attachedID)
}

func TestHandleSelectCharacter_RequiresAuth(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("selectCharacter", map[string]interface{}{"characterId": entity.NewID().String()})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Nil(t, s.inst)
	assert.True(t, world.attachedID.IsNil())
}

func TestHandleChat_AdminCommandFallsThroughWhenUnhandled(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()
	world.admins["alice"] = true
	world.adminHandled = false

	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "hunter2"})
	s.Dispatch("selectCharacter", map[string]interface{}{"characterId": entity.NewID().String()})

	s.Dispatch("chat", map[string]interface{}{"message": "/unknowncmd"})

	assert.Equal(t, "/unknowncmd", world.lastAdminLine)
}

func TestHandleChat_NonAdminNeverTriesAdminCommand(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()

	s.Dispatch("register", map[string]interface{}{"user": "bob", "pass": "hunter2"})
	s.Dispatch("selectCharacter", map[string]interface{}{"characterId": entity.NewID().String()})

	s.Dispatch("chat", map[string]interface{}{"message": "/give sword"})

	assert.Empty(t, world.lastAdminLine)
}

func TestHandleVaultTransfer_SendsErrorOnIncompatibleTransfer(t *testing.T) {
	s, world, cleanup := newTestSession(t)
	defer cleanup()
	world.vaultResult = false

	s.Dispatch("register", map[string]interface{}{"user": "alice", "pass": "hunter2"})
	s.Dispatch("selectCharacter", map[string]interface{}{"characterId": entity.NewID().String()})

	// No assertion on the wire response itself (that would need reading
	// back from the client conn); this exercises the handler path without
	// panicking when the transfer is rejected.
	assert.NotPanics(t, func() {
		s.Dispatch("vaultTransfer", map[string]interface{}{
			"fromVault": false,
			"fromSlot":  float64(0),
			"toSlot":    float64(1),
		})
	})
}

func TestAccountIDOrReject_EmptyWhenUnauthenticated(t *testing.T) {
	s, _, cleanup := newTestSession(t)
	defer cleanup()

	assert.Equal(t, "", s.accountIDOrReject())
}

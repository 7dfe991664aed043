package persistence

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmshard/pkg/content"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := NewStore(dir, time.Hour)
	require.NoError(t, err)
	return s
}

func TestStore_CreateAccount_RejectsDuplicateUsername(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateAccount("Wizard1", "hunter2")
	require.NoError(t, err)

	_, err = s.CreateAccount("wizard1", "different")
	assert.Error(t, err)
}

func TestStore_ValidateLogin_AcceptsCorrectPassword(t *testing.T) {
	s := newTestStore(t)
	account, err := s.CreateAccount("rogue", "swordfish")
	require.NoError(t, err)

	got, ok := s.ValidateLogin("rogue", "swordfish")
	require.True(t, ok)
	assert.Equal(t, account.ID, got.ID)
}

func TestStore_ValidateLogin_RejectsWrongPassword(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateAccount("rogue", "swordfish")
	require.NoError(t, err)

	_, ok := s.ValidateLogin("rogue", "wrong")
	assert.False(t, ok)
}

func TestStore_ValidateLogin_UnknownUserStillTakesDummyPath(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.ValidateLogin("nobody", "whatever")
	assert.False(t, ok)
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	account, err := s.CreateAccount("archer", "pass")
	require.NoError(t, err)

	token, err := s.CreateSession(account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, ok := s.ValidateSession(token)
	require.True(t, ok)
	assert.Equal(t, account.ID, got.ID)

	s.RevokeSession(token)
	_, ok = s.ValidateSession(token)
	assert.False(t, ok)
}

func TestStore_ExpiredSessionIsRejected(t *testing.T) {
	s := newTestStore(t)
	s.ttl = -time.Second // already expired the instant it's created

	account, err := s.CreateAccount("mage", "pass")
	require.NoError(t, err)

	token, err := s.CreateSession(account.ID)
	require.NoError(t, err)

	_, ok := s.ValidateSession(token)
	assert.False(t, ok)
}

func TestStore_CharacterLifecycle(t *testing.T) {
	s := newTestStore(t)
	account, err := s.CreateAccount("player", "pass")
	require.NoError(t, err)

	class := content.ClassDef{
		ID:     "wizard",
		BaseHP: 100,
		BaseMP: 50,
		StartingItems: content.StartingEquipment{
			Weapon: "starter_staff",
		},
	}

	c, err := s.CreateCharacter(account.ID, "Gandalf", class)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Level)
	assert.True(t, c.Alive)
	assert.Equal(t, "starter_staff", c.Equipment[0])

	got, ok := s.GetCharacter(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.Name, got.Name)

	alive := s.GetAliveCharactersByAccount(account.ID)
	assert.Len(t, alive, 1)

	got.Level = 5
	require.NoError(t, s.SaveCharacter(got))
	reloaded, ok := s.GetCharacter(c.ID)
	require.True(t, ok)
	assert.Equal(t, 5, reloaded.Level)

	require.NoError(t, s.KillCharacter(c.ID))
	assert.Empty(t, s.GetAliveCharactersByAccount(account.ID))
}

func TestStore_VaultRoundTrip(t *testing.T) {
	s := newTestStore(t)
	account, err := s.CreateAccount("hoarder", "pass")
	require.NoError(t, err)

	assert.Empty(t, s.GetVaultItems(account.ID))

	items := []string{"ring_of_haste", "potion_hp"}
	require.NoError(t, s.SaveVaultItems(account.ID, items))

	assert.Equal(t, items, s.GetVaultItems(account.ID))
}

func TestStore_ReloadsFromDisk(t *testing.T) {
	dir, err := os.MkdirTemp("", "store-reload-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s1, err := NewStore(dir, time.Hour)
	require.NoError(t, err)
	account, err := s1.CreateAccount("persisted", "pass")
	require.NoError(t, err)

	s2, err := NewStore(dir, time.Hour)
	require.NoError(t, err)

	got, ok := s2.GetAccount(account.ID)
	require.True(t, ok)
	assert.Equal(t, account.Username, got.Username)
}

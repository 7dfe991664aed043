package persistence

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/resilience"
)

// dummyHashForTiming is compared against on every failed lookup so that a
// missing username takes the same bcrypt cost as a wrong password, per
// spec §7's account-enumeration-resistance requirement.
var dummyHashForTiming, _ = bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.DefaultCost)

// Account is the durable record behind a login.
type Account struct {
	ID           string    `yaml:"id"`
	Username     string    `yaml:"username"`
	PasswordHash string    `yaml:"password_hash"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// Character is the durable record of one player character.
type Character struct {
	ID        string `yaml:"id"`
	AccountID string `yaml:"account_id"`
	Name      string `yaml:"name"`
	ClassID   string `yaml:"class_id"`

	Level int `yaml:"level"`
	Exp   int `yaml:"exp"`

	HP    float64 `yaml:"hp"`
	MaxHP float64 `yaml:"max_hp"`
	MP    float64 `yaml:"mp"`
	MaxMP float64 `yaml:"max_mp"`

	Stats     content.Stats      `yaml:"stats"`
	Equipment [4]string          `yaml:"equipment"`
	Inventory [entity.InventorySize]string `yaml:"inventory"`
	Lifetime  entity.Lifetime    `yaml:"lifetime"`

	Alive     bool      `yaml:"alive"`
	CreatedAt time.Time `yaml:"created_at"`
	DiedAt    time.Time `yaml:"died_at,omitempty"`
}

type sessionRecord struct {
	Token     string    `yaml:"token"`
	AccountID string    `yaml:"account_id"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// Store is the persistence interface the rest of the server consumes: an
// opaque accessor for accounts, characters, sessions and vaults, per spec
// §6. It keeps an in-memory index for fast reads and mirrors every mutation
// to disk through FileStore, with writes guarded by a circuit breaker so a
// stalled disk degrades gracefully rather than blocking the tick loop's
// callers indefinitely.
type Store struct {
	fs      *FileStore
	writeCB *resilience.CircuitBreaker
	ttl     time.Duration

	mu         sync.RWMutex
	accounts   map[string]*Account // by id
	byUsername map[string]string   // username (lowercased) -> account id
	characters map[string]*Character
	sessions   map[string]*sessionRecord
	vaults     map[string][]string // account id -> item ids
}

// NewStore opens (or creates) a file-backed store under dataDir. sessionTTL
// sets how long issued tokens remain valid.
func NewStore(dataDir string, sessionTTL time.Duration) (*Store, error) {
	fs, err := NewFileStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open persistence store: %w", err)
	}

	s := &Store{
		fs:         fs,
		writeCB:    resilience.NewCircuitBreaker(resilience.PersistenceWriteConfig),
		ttl:        sessionTTL,
		accounts:   make(map[string]*Account),
		byUsername: make(map[string]string),
		characters: make(map[string]*Character),
		sessions:   make(map[string]*sessionRecord),
		vaults:     make(map[string][]string),
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadAll() error {
	if files, err := s.fs.List("accounts/*.yaml"); err == nil {
		for _, f := range files {
			var a Account
			if err := s.fs.Load(f, &a); err != nil {
				logrus.WithError(err).WithField("file", f).Warn("skipping unreadable account record")
				continue
			}
			s.accounts[a.ID] = &a
			s.byUsername[lowerUsername(a.Username)] = a.ID
		}
	}
	if files, err := s.fs.List("characters/*.yaml"); err == nil {
		for _, f := range files {
			var c Character
			if err := s.fs.Load(f, &c); err != nil {
				logrus.WithError(err).WithField("file", f).Warn("skipping unreadable character record")
				continue
			}
			s.characters[c.ID] = &c
		}
	}
	if files, err := s.fs.List("sessions/*.yaml"); err == nil {
		now := time.Now()
		for _, f := range files {
			var rec sessionRecord
			if err := s.fs.Load(f, &rec); err != nil {
				continue
			}
			if rec.ExpiresAt.Before(now) {
				_ = s.fs.Delete(f)
				continue
			}
			s.sessions[rec.Token] = &rec
		}
	}
	if files, err := s.fs.List("vaults/*.yaml"); err == nil {
		for _, f := range files {
			var items []string
			if err := s.fs.Load(f, &items); err != nil {
				continue
			}
			s.vaults[vaultAccountIDFromFile(f)] = items
		}
	}
	return nil
}

func lowerUsername(u string) string {
	out := make([]byte, len(u))
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func accountFile(id string) string   { return "accounts/" + id + ".yaml" }
func characterFile(id string) string { return "characters/" + id + ".yaml" }
func sessionFile(token string) string { return "sessions/" + token + ".yaml" }
func vaultFile(accountID string) string { return "vaults/" + accountID + ".yaml" }

func vaultAccountIDFromFile(f string) string {
	// f looks like "vaults/<id>.yaml"; strip directory and extension.
	name := f
	if i := lastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := lastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// write persists data to filename behind the write circuit breaker.
func (s *Store) write(filename string, data interface{}) error {
	return s.writeCB.Execute(context.Background(), func(context.Context) error {
		return s.fs.Save(filename, data)
	})
}

// GetAccount returns the account by id, or false if it does not exist.
func (s *Store) GetAccount(id string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// CreateAccount registers a new account with a bcrypt-hashed password.
// Returns an error if the username is already taken.
func (s *Store) CreateAccount(username, password string) (Account, error) {
	key := lowerUsername(username)

	s.mu.Lock()
	if _, exists := s.byUsername[key]; exists {
		s.mu.Unlock()
		return Account{}, fmt.Errorf("username already registered")
	}
	s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := Account{
		ID:           entity.NewID().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	if _, exists := s.byUsername[key]; exists {
		s.mu.Unlock()
		return Account{}, fmt.Errorf("username already registered")
	}
	s.accounts[account.ID] = &account
	s.byUsername[key] = account.ID
	s.mu.Unlock()

	if err := s.write(accountFile(account.ID), &account); err != nil {
		return Account{}, fmt.Errorf("failed to persist account: %w", err)
	}
	return account, nil
}

// ValidateLogin checks username/password and returns the matching account.
// It always performs a bcrypt comparison, against a precomputed dummy hash
// when the username is unknown, so that timing does not reveal whether a
// username exists, per spec §7.
func (s *Store) ValidateLogin(username, password string) (Account, bool) {
	s.mu.RLock()
	id, known := s.byUsername[lowerUsername(username)]
	var account Account
	if known {
		account = *s.accounts[id]
	}
	s.mu.RUnlock()

	hash := dummyHashForTiming
	if known {
		hash = []byte(account.PasswordHash)
	}
	match := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	if !known || !match {
		return Account{}, false
	}
	return account, true
}

// CreateSession issues a new random session token for accountID.
func (s *Store) CreateSession(accountID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	rec := sessionRecord{
		Token:     token,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = &rec
	s.mu.Unlock()

	if err := s.write(sessionFile(token), &rec); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}
	return token, nil
}

// ValidateSession returns the account behind token, if it exists and has
// not expired. Expired sessions are swept lazily on lookup.
func (s *Store) ValidateSession(token string) (Account, bool) {
	s.mu.RLock()
	rec, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Account{}, false
	}
	if time.Now().After(rec.ExpiresAt) {
		s.RevokeSession(token)
		return Account{}, false
	}
	return s.GetAccount(rec.AccountID)
}

// RevokeSession invalidates token immediately.
func (s *Store) RevokeSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	_ = s.fs.Delete(sessionFile(token))
}

// CreateCharacter creates a fresh level-1 character record from class's
// base stats and starting equipment. Callers enforce the per-account alive-character
// cap before calling this.
func (s *Store) CreateCharacter(accountID, name string, class content.ClassDef) (Character, error) {
	c := Character{
		ID:        entity.NewID().String(),
		AccountID: accountID,
		Name:      name,
		ClassID:   class.ID,
		Level:     1,
		Stats:     class.BaseStats,
		HP:        class.BaseHP,
		MaxHP:     class.BaseHP,
		MP:        class.BaseMP,
		MaxMP:     class.BaseMP,
		Alive:     true,
		CreatedAt: time.Now(),
	}
	c.Equipment[entity.SlotWeapon] = class.StartingItems.Weapon
	c.Equipment[entity.SlotAbility] = class.StartingItems.Ability
	c.Equipment[entity.SlotArmor] = class.StartingItems.Armor

	s.mu.Lock()
	s.characters[c.ID] = &c
	s.mu.Unlock()

	if err := s.write(characterFile(c.ID), &c); err != nil {
		return Character{}, fmt.Errorf("failed to persist character: %w", err)
	}
	return c, nil
}

// GetCharacter returns a character by id.
func (s *Store) GetCharacter(id string) (Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return Character{}, false
	}
	return *c, true
}

// GetAliveCharactersByAccount lists every non-dead character owned by
// accountID, used to enforce the per-account alive-character cap and to
// populate the character-select screen.
func (s *Store) GetAliveCharactersByAccount(accountID string) []Character {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Character
	for _, c := range s.characters {
		if c.AccountID == accountID && c.Alive {
			out = append(out, *c)
		}
	}
	return out
}

// SaveCharacter overwrites the durable record for c.ID, used by autosave and
// on-disconnect persistence.
func (s *Store) SaveCharacter(c Character) error {
	s.mu.Lock()
	s.characters[c.ID] = &c
	s.mu.Unlock()

	return s.write(characterFile(c.ID), &c)
}

// KillCharacter marks a character permanently dead, per spec §4.3's
// permadeath rule.
func (s *Store) KillCharacter(id string) error {
	s.mu.Lock()
	c, ok := s.characters[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("character not found: %s", id)
	}
	c.Alive = false
	c.DiedAt = time.Now()
	snapshot := *c
	s.mu.Unlock()

	return s.write(characterFile(id), &snapshot)
}

// GetVaultItems returns the item ids currently stored in accountID's vault.
func (s *Store) GetVaultItems(accountID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.vaults[accountID]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// SaveVaultItems overwrites accountID's vault contents.
func (s *Store) SaveVaultItems(accountID string, items []string) error {
	stored := make([]string, len(items))
	copy(stored, items)

	s.mu.Lock()
	s.vaults[accountID] = stored
	s.mu.Unlock()

	return s.write(vaultFile(accountID), stored)
}

// Package entity defines the concrete game objects that live inside an
// instance — players, enemies, projectiles, loot bags, portals and vault
// chests — together with the base kernel (identity, position, radius,
// remove-flag) they all share.
package entity

import "github.com/google/uuid"

// ID is the 128-bit opaque identifier every entity carries. The
// (instance, ID) pair is the only valid reference to a live entity;
// cross-instance references do not exist at runtime.
type ID uuid.UUID

// NilID is the zero value, used to mean "no target".
var NilID = ID(uuid.Nil)

// NewID mints a fresh random entity id.
func NewID() ID {
	return ID(uuid.New())
}

// String renders the id in its canonical hyphenated form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id ID) IsNil() bool {
	return id == NilID
}

// ParseID parses a canonical UUID string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, err
	}
	return ID(u), nil
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as plain
// strings in both YAML/JSON and the msgpack wire format.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Package session owns the per-connection protocol: message framing,
// rate limiting, and dispatch from validated client messages onto either
// the World orchestration surface or a target instance's command queue.
package session

import (
	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/instance"
)

// World is the orchestration surface a Session dispatches onto. It is
// implemented by the server package's GameServer; Session depends only on
// this interface so pkg/session never imports pkg/server.
type World interface {
	Content() *content.Table

	Register(username, password string) error
	AuthPassword(username, password string) (token string, accountID string, err error)
	AuthToken(token string) (accountID string, err error)
	Logout(token string)

	Characters(accountID string) []CharacterSummary
	CreateCharacter(accountID, name, classID string) (CharacterSummary, error)
	ClassExists(classID string) bool

	// EnterWorld loads characterID into a live player, places it in the
	// nexus instance, and returns the player and that instance.
	EnterWorld(accountID, characterID string) (*entity.Player, *instance.Instance, error)
	// Leave saves and detaches the player identified by playerID from inst.
	Leave(inst *instance.Instance, playerID entity.ID)

	Instance(instanceID string) *instance.Instance

	EnterPortal(inst *instance.Instance, player *entity.Player, portalID entity.ID) (*instance.Instance, error)
	ReturnToNexus(inst *instance.Instance, player *entity.Player) (*instance.Instance, error)

	OpenVault(accountID string) (*instance.Instance, error)
	CloseVault(accountID string)
	VaultTransfer(inst *instance.Instance, accountID string, player *entity.Player, fromVault bool, fromSlot, toSlot int) bool

	IsAdmin(username string) bool
	// ExecuteAdminCommand parses line as an admin command. handled is false
	// for an unrecognized command, in which case the caller falls through
	// to broadcasting line as ordinary chat, per spec §4.8.
	ExecuteAdminCommand(inst *instance.Instance, player *entity.Player, line string) (reply string, handled bool)

	// Attach registers sink as the delivery target for every tick event
	// addressed to playerID, until a matching Detach. Called once a
	// session's player has actually entered an instance.
	Attach(playerID entity.ID, sink EventSink)
	// Detach removes a prior Attach; called on session close.
	Detach(playerID entity.ID)
}

// EventSink receives outbound messages routed from an instance's tick
// events. Session implements this directly.
type EventSink interface {
	Send(msgType string, data interface{}) error
}

// CharacterSummary is the character-select-screen projection of a durable
// character record.
type CharacterSummary struct {
	ID      string `msgpack:"id"`
	Name    string `msgpack:"name"`
	ClassID string `msgpack:"classId"`
	Level   int    `msgpack:"level"`
}

package session

import (
	"strings"

	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
	"realmshard/pkg/instance"
)

// Dispatch routes one validated inbound message to its handler. msgType
// and data have already passed InputValidator.ValidateMessage.
func (s *Session) Dispatch(msgType string, data map[string]interface{}) {
	switch msgType {
	case "register":
		s.handleRegister(data)
	case "auth":
		s.handleAuth(data)
	case "authToken":
		s.handleAuthToken(data)
	case "logout":
		s.handleLogout(data)
	case "createCharacter":
		s.handleCreateCharacter(data)
	case "selectCharacter":
		s.handleSelectCharacter(data)
	case "input":
		s.handleInput(data)
	case "shoot":
		s.handleShoot(data)
	case "useAbility":
		s.handleUseAbility()
	case "pickupLoot":
		s.handlePickupLoot(data)
	case "dropItem":
		s.handleDropItem(data)
	case "swapItems":
		s.handleSwapItems(data)
	case "enterPortal":
		s.handleEnterPortal(data)
	case "returnToNexus":
		s.handleReturnToNexus()
	case "interactVaultChest":
		s.handleInteractVaultChest()
	case "vaultTransfer":
		s.handleVaultTransfer(data)
	case "closeVault":
		s.handleCloseVault()
	case "chat":
		s.handleChat(data)
	default:
		s.sendError("unhandled message type: " + msgType)
	}
}

func (s *Session) handleRegister(data map[string]interface{}) {
	user := data["user"].(string)
	pass := data["pass"].(string)
	if err := s.world.Register(user, pass); err != nil {
		s.sendError(err.Error())
		return
	}
	s.finishAuth(user, pass)
}

func (s *Session) handleAuth(data map[string]interface{}) {
	s.finishAuth(data["user"].(string), data["pass"].(string))
}

func (s *Session) finishAuth(user, pass string) {
	token, accountID, err := s.world.AuthPassword(user, pass)
	if err != nil {
		s.sendError("invalid credentials")
		return
	}
	s.setAccount(token, accountID, user)
	s.sendCharacterList(accountID)
}

func (s *Session) handleAuthToken(data map[string]interface{}) {
	token := data["token"].(string)
	accountID, err := s.world.AuthToken(token)
	if err != nil {
		s.sendError("invalid or expired session")
		return
	}
	s.setAccount(token, accountID, "")
	s.sendCharacterList(accountID)
}

func (s *Session) setAccount(token, accountID, username string) {
	s.mu.Lock()
	s.token, s.accountID, s.username = token, accountID, username
	s.mu.Unlock()
	_ = s.Send("authOk", map[string]interface{}{"token": token})
}

func (s *Session) sendCharacterList(accountID string) {
	chars := s.world.Characters(accountID)
	_ = s.Send("characterList", map[string]interface{}{"characters": chars})
}

func (s *Session) handleLogout(data map[string]interface{}) {
	s.world.Logout(data["token"].(string))
	s.Close()
}

func (s *Session) handleCreateCharacter(data map[string]interface{}) {
	accountID := s.accountIDOrReject()
	if accountID == "" {
		return
	}
	classID := data["classId"].(string)
	if !s.world.ClassExists(classID) {
		s.sendError("unknown class")
		return
	}
	s.mu.RLock()
	name := s.username
	s.mu.RUnlock()

	summary, err := s.world.CreateCharacter(accountID, name, classID)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	_ = s.Send("characterCreated", summary)
}

func (s *Session) handleSelectCharacter(data map[string]interface{}) {
	accountID := s.accountIDOrReject()
	if accountID == "" {
		return
	}
	characterID := data["characterId"].(string)

	player, inst, err := s.world.EnterWorld(accountID, characterID)
	if err != nil {
		s.sendError(err.Error())
		return
	}

	s.mu.Lock()
	s.characterID = characterID
	s.playerID = player.ID
	s.inst = inst
	s.mu.Unlock()

	s.world.Attach(player.ID, s)
	s.sendInstanceChange(inst, player)
}

func (s *Session) sendInstanceChange(inst *instance.Instance, player *entity.Player) {
	_ = s.Send("instanceChange", map[string]interface{}{
		"instanceId": inst.ID,
		"width":      inst.Map.Width,
		"height":     inst.Map.Height,
		"tiles":      inst.Map.TileArray(),
		"playerId":   player.ID,
		"pos":        player.Pos,
	})
}

func (s *Session) handleInput(data map[string]interface{}) {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}

	in := player.LastInput
	if dir, ok := data["moveDirection"].(map[string]interface{}); ok {
		in.MoveDir = geometry.Vec2{X: dir["x"].(float64), Y: dir["y"].(float64)}
	}
	if angle, ok := data["aimAngle"].(float64); ok {
		in.AimAngle = angle
	}
	if shooting, ok := data["shooting"].(bool); ok {
		in.Shooting = shooting
	}

	inst.SetPlayerInput(player.ID, in)
}

func (s *Session) handleShoot(data map[string]interface{}) {
	_, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	playerID := s.playerIDSnapshot()
	aimAngle := data["aimAngle"].(float64)
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		p.LastInput.AimAngle = aimAngle
		return inst.Shoot(p)
	})
}

func (s *Session) handleUseAbility() {
	_, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	playerID := s.playerIDSnapshot()
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		return inst.UseAbility(p)
	})
}

func (s *Session) handlePickupLoot(data map[string]interface{}) {
	_, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	lootID, err := entity.ParseID(data["lootId"].(string))
	if err != nil {
		return
	}
	playerID := s.playerIDSnapshot()
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		inst.TryPickupLoot(p, lootID)
		return nil
	})
}

func (s *Session) handleDropItem(data map[string]interface{}) {
	_, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	slot := int(data["slot"].(float64))
	playerID := s.playerIDSnapshot()
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		inst.DropItem(p, slot)
		return nil
	})
}

func (s *Session) handleSwapItems(data map[string]interface{}) {
	_, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	from, to := int(data["from"].(float64)), int(data["to"].(float64))
	playerID := s.playerIDSnapshot()
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		inst.SwapItems(p, from, to)
		return nil
	})
}

func (s *Session) handleEnterPortal(data map[string]interface{}) {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	portalID, err := entity.ParseID(data["portalId"].(string))
	if err != nil {
		return
	}
	dest, err := s.world.EnterPortal(inst, player, portalID)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.mu.Lock()
	s.inst = dest
	s.mu.Unlock()
	s.sendInstanceChange(dest, player)
}

func (s *Session) handleReturnToNexus() {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	dest, err := s.world.ReturnToNexus(inst, player)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.mu.Lock()
	s.inst = dest
	s.mu.Unlock()
	s.sendInstanceChange(dest, player)
}

func (s *Session) handleInteractVaultChest() {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	if !inst.TryInteractVaultChest(player) {
		s.sendError("too far from vault chest")
		return
	}
	accountID := s.accountIDOrReject()
	if accountID == "" {
		return
	}
	vaultInst, err := s.world.OpenVault(accountID)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.mu.Lock()
	s.vaultOpen = true
	s.mu.Unlock()
	_ = s.Send("vaultOpened", map[string]interface{}{"instanceId": vaultInst.ID})
}

func (s *Session) handleVaultTransfer(data map[string]interface{}) {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	accountID := s.accountIDOrReject()
	if accountID == "" {
		return
	}
	fromVault := data["fromVault"].(bool)
	fromSlot := int(data["fromSlot"].(float64))
	toSlot := int(data["toSlot"].(float64))
	if !s.world.VaultTransfer(inst, accountID, player, fromVault, fromSlot, toSlot) {
		s.sendError("incompatible vault transfer")
	}
}

func (s *Session) handleCloseVault() {
	accountID := s.accountIDOrReject()
	if accountID == "" {
		return
	}
	s.world.CloseVault(accountID)
	s.mu.Lock()
	s.vaultOpen = false
	s.mu.Unlock()
}

func (s *Session) handleChat(data map[string]interface{}) {
	player, inst, ok := s.playerAndInstance()
	if !ok {
		return
	}
	message := data["message"].(string)

	if strings.HasPrefix(message, "/") {
		s.mu.RLock()
		username := s.username
		s.mu.RUnlock()
		if s.world.IsAdmin(username) {
			if reply, handled := s.world.ExecuteAdminCommand(inst, player, message); handled {
				_ = s.Send("adminReply", map[string]interface{}{"message": reply})
				return
			}
		}
		// Not an admin, or an admin's unrecognized command: falls through
		// to ordinary chat broadcast, per spec §4.8.
	}

	playerID := s.playerIDSnapshot()
	inst.Enqueue(func(inst *instance.Instance) []instance.Event {
		p := inst.Player(playerID)
		if p == nil {
			return nil
		}
		return []instance.Event{{
			Type: "chat",
			Data: map[string]interface{}{
				"playerId": p.ID,
				"name":     p.Name,
				"message":  message,
			},
		}}
	})
}

func (s *Session) accountIDOrReject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.accountID == "" {
		s.sendError("not authenticated")
		return ""
	}
	return s.accountID
}

func (s *Session) playerIDSnapshot() entity.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

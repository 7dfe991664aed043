package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"realmshard/pkg/config"
	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
	"realmshard/pkg/instance"
	"realmshard/pkg/persistence"
	"realmshard/pkg/session"
	"realmshard/pkg/validation"
)

const (
	nexusInstanceID = "nexus-main"
	realmInstanceID = "realm-main"

	nexusSize = 48
	realmSize = 160
)

// GameServer is the orchestration layer binding together the content
// table, the persistence store, every live instance, and the tick loop
// that drives them. It implements session.World so pkg/session never
// needs to know about any of this directly.
type GameServer struct {
	cfg     *config.Config
	content *content.Table
	store   *persistence.Store
	metrics *Metrics
	logger  *logrus.Entry

	validator *validation.InputValidator
	upgrader  websocket.Upgrader

	ticks *instance.TickLoop
	admin *adminAllowlist

	mu        sync.RWMutex
	instances map[string]*instance.Instance

	sinkMu sync.RWMutex
	sinks  map[entity.ID]session.EventSink

	seedCounter      int64
	lastTickDuration atomic.Int64 // nanoseconds, set by OnTickTiming
}

// NewGameServer bootstraps the standing nexus and realm instances, wires
// the three permanent portals spec §4.7 requires, and registers both
// instances with a fresh tick loop driven at cfg.TickRate.
func NewGameServer(cfg *config.Config, table *content.Table, store *persistence.Store, metrics *Metrics, logger *logrus.Entry) *GameServer {
	gs := &GameServer{
		cfg:       cfg,
		content:   table,
		store:     store,
		metrics:   metrics,
		logger:    logger,
		validator: validation.NewInputValidator(cfg.MaxRequestSize),
		ticks:     instance.NewTickLoop(cfg.TickRate),
		admin:     newAdminAllowlist(cfg.AdminAllowlistPath, cfg.AdminAllowlistPollInterval),
		instances: make(map[string]*instance.Instance),
		sinks:     make(map[entity.ID]session.EventSink),
		seedCounter: time.Now().UnixNano(),
	}
	gs.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}

	instance.SetAOIRadius(cfg.AOIRadius)

	nexusMap, nexusCenter := geometry.GenerateNexusMap(nexusSize, nexusSize)
	nexus := instance.New(nexusInstanceID, instance.KindNexus, nexusMap, table, gs.nextSeed())

	realmMap, realmCenter := geometry.GenerateRealmMap(realmSize, realmSize)
	realm := instance.New(realmInstanceID, instance.KindRealm, realmMap, table, gs.nextSeed())

	nexus.AddPortal(entity.NewPortal(offset(nexusCenter, -3, 0), realmInstanceID, entity.TargetRealm, "Realm"))
	nexus.AddPortal(entity.NewPortal(offset(nexusCenter, 3, 0), "vault", entity.TargetVault, "Vault"))
	realm.AddPortal(entity.NewPortal(offset(realmCenter, 0, -3), nexusInstanceID, entity.TargetNexus, "Nexus"))

	gs.instances[nexusInstanceID] = nexus
	gs.instances[realmInstanceID] = realm
	gs.ticks.Register(nexus)
	gs.ticks.Register(realm)
	gs.ticks.OnTick = gs.routeTick
	gs.ticks.OnTickTiming = gs.recordTickTiming

	return gs
}

// recordTickTiming is the tick loop's OnTickTiming hook: it feeds the
// Prometheus tick-duration histogram and keeps the most recent duration
// available to PerformanceAlerter via LastTickDuration.
func (gs *GameServer) recordTickTiming(_ string, d time.Duration) {
	gs.metrics.RecordTick(d)
	gs.lastTickDuration.Store(int64(d))
}

// LastTickDuration returns the most recently observed instance Update
// duration, or 0 before the first tick. Wired as the PerformanceAlerter's
// tick-duration source in main.go.
func (gs *GameServer) LastTickDuration() time.Duration {
	return time.Duration(gs.lastTickDuration.Load())
}

func offset(p geometry.Vec2, dx, dy float64) geometry.Vec2 {
	return geometry.Vec2{X: p.X + dx, Y: p.Y + dy}
}

func (gs *GameServer) nextSeed() int64 {
	return atomic.AddInt64(&gs.seedCounter, 1)
}

// Content returns the shared, read-only content table.
func (gs *GameServer) Content() *content.Table { return gs.content }

// Register creates a new account with a fresh password hash.
func (gs *GameServer) Register(username, password string) error {
	_, err := gs.store.CreateAccount(username, password)
	return err
}

// AuthPassword validates a username/password pair and issues a session token.
func (gs *GameServer) AuthPassword(username, password string) (string, string, error) {
	account, ok := gs.store.ValidateLogin(username, password)
	if !ok {
		return "", "", fmt.Errorf("invalid credentials")
	}
	token, err := gs.store.CreateSession(account.ID)
	if err != nil {
		return "", "", err
	}
	return token, account.ID, nil
}

// AuthToken resolves a previously issued session token back to an account.
func (gs *GameServer) AuthToken(token string) (string, error) {
	account, ok := gs.store.ValidateSession(token)
	if !ok {
		return "", fmt.Errorf("invalid or expired session")
	}
	return account.ID, nil
}

// Logout revokes token immediately.
func (gs *GameServer) Logout(token string) {
	gs.store.RevokeSession(token)
}

// Characters lists accountID's alive characters for the character-select
// screen.
func (gs *GameServer) Characters(accountID string) []session.CharacterSummary {
	chars := gs.store.GetAliveCharactersByAccount(accountID)
	out := make([]session.CharacterSummary, len(chars))
	for i, c := range chars {
		out[i] = session.CharacterSummary{ID: c.ID, Name: c.Name, ClassID: c.ClassID, Level: c.Level}
	}
	return out
}

// CreateCharacter creates a fresh level-1 character, enforcing the
// per-account alive-character cap.
func (gs *GameServer) CreateCharacter(accountID, name, classID string) (session.CharacterSummary, error) {
	if len(gs.store.GetAliveCharactersByAccount(accountID)) >= gs.cfg.MaxAliveCharactersPerAccount {
		return session.CharacterSummary{}, fmt.Errorf("maximum alive characters reached")
	}
	class, ok := gs.content.Classes[classID]
	if !ok {
		return session.CharacterSummary{}, fmt.Errorf("unknown class")
	}
	c, err := gs.store.CreateCharacter(accountID, name, class)
	if err != nil {
		return session.CharacterSummary{}, err
	}
	return session.CharacterSummary{ID: c.ID, Name: c.Name, ClassID: c.ClassID, Level: c.Level}, nil
}

// ClassExists reports whether classID names a loaded class.
func (gs *GameServer) ClassExists(classID string) bool {
	_, ok := gs.content.Classes[classID]
	return ok
}

// EnterWorld loads characterID's durable record into a live Player and
// places it in the nexus. The player's id is set equal to the character's
// id, so every later save/death lookup can key off player.ID directly.
func (gs *GameServer) EnterWorld(accountID, characterID string) (*entity.Player, *instance.Instance, error) {
	char, ok := gs.store.GetCharacter(characterID)
	if !ok || char.AccountID != accountID {
		return nil, nil, fmt.Errorf("character not found")
	}
	if !char.Alive {
		return nil, nil, fmt.Errorf("character is dead")
	}
	class, ok := gs.content.Classes[char.ClassID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown class")
	}

	id, err := entity.ParseID(char.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("corrupt character id")
	}

	player := entity.NewPlayer(accountID, char.Name, class, geometry.Vec2{})
	player.ID = id
	player.Level = char.Level
	player.Exp = char.Exp
	player.HP, player.MaxHP = char.HP, char.MaxHP
	player.MP, player.MaxMP = char.MP, char.MaxMP
	player.Stats = char.Stats
	player.Equipment = char.Equipment
	player.Inventory = char.Inventory
	player.Lifetime = char.Lifetime

	nexus := gs.Instance(nexusInstanceID)
	nexus.AddPlayer(player)
	return player, nexus, nil
}

// Leave detaches playerID from inst, persists its character record, and
// reaps inst if it was an on-demand instance that is now empty.
func (gs *GameServer) Leave(inst *instance.Instance, playerID entity.ID) {
	p := inst.RemovePlayer(playerID)
	if p == nil {
		return
	}
	gs.saveCharacter(p)
	gs.reapIfEmpty(inst)
}

func (gs *GameServer) saveCharacter(p *entity.Player) {
	existing, _ := gs.store.GetCharacter(p.ID.String())
	c := persistence.Character{
		ID:        p.ID.String(),
		AccountID: p.AccountID,
		Name:      p.Name,
		ClassID:   p.ClassID,
		Level:     p.Level,
		Exp:       p.Exp,
		HP:        p.HP,
		MaxHP:     p.MaxHP,
		MP:        p.MP,
		MaxMP:     p.MaxMP,
		Stats:     p.Stats,
		Equipment: p.Equipment,
		Inventory: p.Inventory,
		Lifetime:  p.Lifetime,
		Alive:     true,
		CreatedAt: existing.CreatedAt,
	}
	err := ExecuteWithRequestTimeout(context.Background(), func(ctx context.Context) error {
		return gs.store.SaveCharacter(c)
	})
	if err != nil {
		gs.logger.WithError(err).WithField("characterId", c.ID).Error("failed to save character")
	}
}

// reapIfEmpty destroys an on-demand (dungeon/vault) instance once its last
// player has left. Standing instances are never reaped.
func (gs *GameServer) reapIfEmpty(inst *instance.Instance) {
	if inst.Kind != instance.KindDungeon && inst.Kind != instance.KindVault {
		return
	}
	if inst.PlayerCount() > 0 {
		return
	}
	gs.mu.Lock()
	delete(gs.instances, inst.ID)
	gs.mu.Unlock()
	gs.ticks.Unregister(inst.ID)
}

// Instance returns a live instance by id, or nil.
func (gs *GameServer) Instance(instanceID string) *instance.Instance {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.instances[instanceID]
}

// EnterPortal moves player from inst through portalID to its destination,
// lazily creating the caller's vault instance for the sentinel vault
// target.
func (gs *GameServer) EnterPortal(inst *instance.Instance, player *entity.Player, portalID entity.ID) (*instance.Instance, error) {
	portal, ok := inst.TryEnterPortal(player, portalID)
	if !ok {
		return nil, fmt.Errorf("not within range of that portal")
	}

	var dest *instance.Instance
	if portal.TargetKind == entity.TargetVault {
		v, err := gs.getOrCreateVault(player.AccountID)
		if err != nil {
			return nil, err
		}
		dest = v
	} else {
		dest = gs.Instance(portal.TargetInstanceID)
		if dest == nil {
			return nil, fmt.Errorf("destination instance no longer exists")
		}
	}

	inst.RemovePlayer(player.ID)
	dest.AddPlayer(player)
	gs.reapIfEmpty(inst)
	return dest, nil
}

// ReturnToNexus moves player from inst straight back to the standing nexus
// instance, per the returnToNexus message.
func (gs *GameServer) ReturnToNexus(inst *instance.Instance, player *entity.Player) (*instance.Instance, error) {
	nexus := gs.Instance(nexusInstanceID)
	inst.RemovePlayer(player.ID)
	nexus.AddPlayer(player)
	gs.reapIfEmpty(inst)
	return nexus, nil
}

// OpenVault lazily creates or returns accountID's vault instance.
func (gs *GameServer) OpenVault(accountID string) (*instance.Instance, error) {
	return gs.getOrCreateVault(accountID)
}

func (gs *GameServer) getOrCreateVault(accountID string) (*instance.Instance, error) {
	id := "vault-" + accountID

	gs.mu.Lock()
	defer gs.mu.Unlock()
	if v, ok := gs.instances[id]; ok {
		return v, nil
	}

	m, spawn, chestPos := geometry.GenerateVaultMap()
	m.Set(int(spawn.X), int(spawn.Y), geometry.TileSpawn)

	v := instance.New(id, instance.KindVault, m, gs.content, gs.nextSeed())
	v.SetVaultChest(entity.NewVaultChest(chestPos))

	gs.instances[id] = v
	gs.ticks.Register(v)
	return v, nil
}

// CloseVault is a no-op: a vault's contents are persisted immediately on
// every VaultTransfer, and physically leaving the vault instance already
// runs through EnterPortal/ReturnToNexus, which reaps it once empty.
func (gs *GameServer) CloseVault(accountID string) {}

// VaultTransfer performs an atomic swap between a vault slot and an
// inventory slot, rejecting any attempt outside the caller's own vault
// instance, per spec §4.6.
func (gs *GameServer) VaultTransfer(inst *instance.Instance, accountID string, player *entity.Player, fromVault bool, fromSlot, toSlot int) bool {
	if inst == nil || inst.Kind != instance.KindVault || inst.ID != "vault-"+accountID {
		return false
	}

	vaultSize := gs.cfg.VaultSize
	items := gs.store.GetVaultItems(accountID)
	if len(items) < vaultSize {
		grown := make([]string, vaultSize)
		copy(grown, items)
		items = grown
	}

	var swapped bool
	found := inst.WithPlayer(player.ID, func(p *entity.Player) {
		swapped = swapVaultSlot(items, p, fromVault, fromSlot, toSlot, vaultSize)
	})
	if !found || !swapped {
		return false
	}

	if err := gs.store.SaveVaultItems(accountID, items); err != nil {
		gs.logger.WithError(err).WithField("accountId", accountID).Error("failed to save vault")
		return false
	}

	gs.sendTo(player.ID, "vaultUpdate", map[string]interface{}{
		"vault":     items,
		"inventory": player.Inventory,
	})
	return true
}

func swapVaultSlot(vault []string, p *entity.Player, fromVault bool, fromSlot, toSlot, vaultSize int) bool {
	if fromVault {
		if fromSlot < 0 || fromSlot >= vaultSize || toSlot < 0 || toSlot >= entity.InventorySize {
			return false
		}
		vault[fromSlot], p.Inventory[toSlot] = p.Inventory[toSlot], vault[fromSlot]
		return true
	}
	if fromSlot < 0 || fromSlot >= entity.InventorySize || toSlot < 0 || toSlot >= vaultSize {
		return false
	}
	p.Inventory[fromSlot], vault[toSlot] = vault[toSlot], p.Inventory[fromSlot]
	return true
}

// IsAdmin reports whether username currently appears in the file-watched
// admin allowlist.
func (gs *GameServer) IsAdmin(username string) bool {
	return gs.admin.Contains(username)
}

// Attach registers sink as playerID's tick-event delivery target.
func (gs *GameServer) Attach(playerID entity.ID, sink session.EventSink) {
	gs.sinkMu.Lock()
	defer gs.sinkMu.Unlock()
	gs.sinks[playerID] = sink
}

// Detach removes a prior Attach.
func (gs *GameServer) Detach(playerID entity.ID) {
	gs.sinkMu.Lock()
	defer gs.sinkMu.Unlock()
	delete(gs.sinks, playerID)
}

func (gs *GameServer) sendTo(playerID entity.ID, msgType string, data interface{}) {
	gs.sinkMu.RLock()
	sink, ok := gs.sinks[playerID]
	gs.sinkMu.RUnlock()
	if !ok {
		return
	}
	if err := sink.Send(msgType, data); err != nil {
		gs.logger.WithError(err).WithField("playerId", playerID.String()).Debug("failed to deliver event")
	}
}

// routeTick is installed as the tick loop's OnTick hook: it drains one
// instance's tick events and routes each through the playerId -> session
// table, applying whatever server-side side effects the event itself
// requires (dungeon creation, boss-kill return portal, permadeath).
func (gs *GameServer) routeTick(instanceID string, events []instance.Event) {
	for _, ev := range events {
		gs.deliverEvent(instanceID, ev)
	}
}

func (gs *GameServer) deliverEvent(instanceID string, ev instance.Event) {
	switch ev.Type {
	case "death":
		if data, ok := ev.Data.(map[string]interface{}); ok {
			if _, isPlayerDeath := data["characterId"]; isPlayerDeath {
				gs.handlePlayerDeath(data)
			}
		}
	case "dungeonPortalRequest":
		gs.spawnDungeon(instanceID, ev)
		return
	case "bossKilled":
		gs.addDungeonReturnPortal(ev)
	}
	gs.fanOut(instanceID, ev)
}

func (gs *GameServer) fanOut(instanceID string, ev instance.Event) {
	if !ev.TargetPlayerID.IsNil() {
		gs.sendTo(ev.TargetPlayerID, ev.Type, ev.Data)
		return
	}
	inst := gs.Instance(instanceID)
	if inst == nil {
		return
	}
	for _, id := range inst.PlayerIDs() {
		if id == ev.ExcludePlayerID {
			continue
		}
		gs.sendTo(id, ev.Type, ev.Data)
	}
}

func (gs *GameServer) handlePlayerDeath(data map[string]interface{}) {
	charID, _ := data["characterId"].(string)
	if charID == "" {
		return
	}
	if err := gs.store.KillCharacter(charID); err != nil {
		gs.logger.WithError(err).WithField("characterId", charID).Error("failed to mark character dead")
	}
}

// spawnDungeon handles a dungeonPortalRequest event: it mints a fresh
// dungeon instance with a procedurally generated map, bulk-spawns its
// initial enemy population, registers it with the tick loop, and drops an
// expiring portal into the requesting instance at the triggering enemy's
// death point, per spec §4.7.
func (gs *GameServer) spawnDungeon(sourceInstanceID string, ev instance.Event) {
	data, ok := ev.Data.(map[string]interface{})
	if !ok {
		return
	}
	pos, _ := data["pos"].(geometry.Vec2)
	expirySecs, _ := data["expirySecs"].(float64)
	srcID, _ := data["sourceId"].(string)
	if srcID == "" {
		srcID = sourceInstanceID
	}

	src := gs.Instance(srcID)
	if src == nil {
		return
	}

	dungeonID := "dungeon-" + entity.NewID().String()
	params := geometry.DefaultDungeonParams(gs.nextSeed())
	m, _ := geometry.GenerateDungeon(params)

	dinst := instance.New(dungeonID, instance.KindDungeon, m, gs.content, gs.nextSeed())
	dinst.SetDungeonMeta(&instance.DungeonMeta{
		SourceInstanceID: srcID,
		BossRoomCenter:   bossRoomCenter(m),
	})
	dinst.PopulateDungeonSpawns()

	gs.mu.Lock()
	gs.instances[dungeonID] = dinst
	gs.mu.Unlock()
	gs.ticks.Register(dinst)

	portal := entity.NewExpiringPortal(pos, dungeonID, entity.TargetDungeon, "Dungeon", src.Clock(), expirySecs)
	src.AddPortal(portal)
}

func bossRoomCenter(m *geometry.Map) geometry.Vec2 {
	var sumX, sumY, n float64
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == geometry.TileBossFloor {
				sumX += float64(x)
				sumY += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return geometry.Vec2{}
	}
	return geometry.Vec2{X: sumX / n, Y: sumY / n}
}

// addDungeonReturnPortal handles a bossKilled event: it adds a permanent
// portal at the boss's death point leading back to the dungeon's source
// instance, per spec §4.7.
func (gs *GameServer) addDungeonReturnPortal(ev instance.Event) {
	data, ok := ev.Data.(map[string]interface{})
	if !ok {
		return
	}
	sourceID, _ := data["sourceId"].(string)
	dungeonID, _ := data["instanceId"].(string)
	pos, _ := data["pos"].(geometry.Vec2)

	dinst := gs.Instance(dungeonID)
	if dinst == nil || sourceID == "" {
		return
	}
	dinst.AddPortal(entity.NewPortal(pos, sourceID, entity.TargetRealm, "Exit"))
}

// autosaveAll saves every currently resident player's character record, run
// on a fixed interval per spec §6.
func (gs *GameServer) autosaveAll() {
	gs.mu.RLock()
	insts := make([]*instance.Instance, 0, len(gs.instances))
	for _, inst := range gs.instances {
		insts = append(insts, inst)
	}
	gs.mu.RUnlock()

	for _, inst := range insts {
		for _, id := range inst.PlayerIDs() {
			if p := inst.Player(id); p != nil {
				gs.saveCharacter(p)
			}
		}
	}
}

func (gs *GameServer) autosaveLoop(done <-chan struct{}) {
	ticker := time.NewTicker(gs.cfg.AutoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			gs.autosaveAll()
		}
	}
}

// Run drives the tick loop, the autosave timer and the admin allowlist
// file watcher until done is closed. It blocks until the tick loop stops.
func (gs *GameServer) Run(done <-chan struct{}) {
	go gs.autosaveLoop(done)
	go gs.admin.Watch(done)
	gs.ticks.Run(done)
}

// ServeWS upgrades an inbound HTTP request to a WebSocket connection and
// runs its session's read loop until the connection closes.
func (gs *GameServer) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := gs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	gs.metrics.RecordWebSocketConnection("connected")
	sess := session.NewSession(conn, gs, gs.validator, gs.logger)
	sess.ReadLoop()
}

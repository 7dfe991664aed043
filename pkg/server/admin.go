package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"realmshard/pkg/content"
	"realmshard/pkg/entity"
	"realmshard/pkg/geometry"
	"realmshard/pkg/instance"
)

// adminAllowlist is a file-watched, case-insensitive set of usernames
// permitted to issue admin chat commands, per spec §4.8. It is reloaded on
// a fixed poll interval whenever the backing file's mtime advances, and
// read by many session goroutines concurrently, so the current set is
// published behind an atomic pointer rather than a mutex.
type adminAllowlist struct {
	path         string
	pollInterval time.Duration
	names        atomic.Pointer[map[string]struct{}]
}

func newAdminAllowlist(path string, pollInterval time.Duration) *adminAllowlist {
	a := &adminAllowlist{path: path, pollInterval: pollInterval}
	empty := make(map[string]struct{})
	a.names.Store(&empty)
	a.reload()
	return a
}

func (a *adminAllowlist) reload() {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return
	}
	names := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line != "" {
			names[line] = struct{}{}
		}
	}
	a.names.Store(&names)
}

// Contains reports whether username currently appears in the allowlist.
func (a *adminAllowlist) Contains(username string) bool {
	names := a.names.Load()
	_, ok := (*names)[strings.ToLower(username)]
	return ok
}

// Watch polls the allowlist file's mtime until done is closed, reloading
// whenever it advances.
func (a *adminAllowlist) Watch(done <-chan struct{}) {
	var lastMod time.Time
	if info, err := os.Stat(a.path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			info, err := os.Stat(a.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				a.reload()
			}
		}
	}
}

// ExecuteAdminCommand parses and runs one admin chat command, per spec
// §4.8: `/give <itemId>`, `/items [filter]`, `/heal`, `/level <n>`,
// `/spawn <enemyId>`, `/tp <x> <y>`, `/help`. handled is false for an
// unrecognized command, so the caller falls through to ordinary chat.
func (gs *GameServer) ExecuteAdminCommand(inst *instance.Instance, player *entity.Player, line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/give":
		return gs.adminGive(inst, player, args)
	case "/items":
		return gs.adminItems(args), true
	case "/heal":
		return gs.adminHeal(inst, player), true
	case "/level":
		return gs.adminLevel(inst, player, args)
	case "/spawn":
		return gs.adminSpawn(inst, player, args)
	case "/tp":
		return gs.adminTeleport(inst, player, args)
	case "/help":
		return "commands: /give <itemId>, /items [filter], /heal, /level <n>, /spawn <enemyId>, /tp <x> <y>, /help", true
	default:
		return "", false
	}
}

func (gs *GameServer) adminGive(inst *instance.Instance, player *entity.Player, args []string) (string, bool) {
	if len(args) != 1 {
		return "usage: /give <itemId>", true
	}
	itemID := args[0]
	if !gs.contentHasItem(itemID) {
		return "unknown item: " + itemID, true
	}

	var gave bool
	inst.WithPlayer(player.ID, func(p *entity.Player) {
		for i, slot := range p.Inventory {
			if slot == "" {
				p.Inventory[i] = itemID
				gave = true
				return
			}
		}
	})
	if !gave {
		return "inventory full", true
	}
	return "gave " + itemID, true
}

func (gs *GameServer) contentHasItem(id string) bool {
	if _, ok := gs.content.Items[id]; ok {
		return true
	}
	if _, ok := gs.content.Weapons[id]; ok {
		return true
	}
	if _, ok := gs.content.Abilities[id]; ok {
		return true
	}
	if _, ok := gs.content.Armors[id]; ok {
		return true
	}
	if _, ok := gs.content.Rings[id]; ok {
		return true
	}
	return false
}

func (gs *GameServer) adminItems(args []string) string {
	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	var matches []string
	for id := range gs.content.Items {
		matches = appendMatch(matches, id, filter)
	}
	for id := range gs.content.Weapons {
		matches = appendMatch(matches, id, filter)
	}
	for id := range gs.content.Abilities {
		matches = appendMatch(matches, id, filter)
	}
	for id := range gs.content.Armors {
		matches = appendMatch(matches, id, filter)
	}
	for id := range gs.content.Rings {
		matches = appendMatch(matches, id, filter)
	}

	if len(matches) == 0 {
		return "no matching items"
	}
	return strings.Join(matches, ", ")
}

func appendMatch(matches []string, id, filter string) []string {
	if filter == "" || strings.Contains(strings.ToLower(id), filter) {
		return append(matches, id)
	}
	return matches
}

func (gs *GameServer) adminHeal(inst *instance.Instance, player *entity.Player) string {
	found := inst.WithPlayer(player.ID, func(p *entity.Player) {
		p.HP = p.MaxHP
		p.MP = p.MaxMP
	})
	if !found {
		return "player not resident"
	}
	return "healed"
}

func (gs *GameServer) adminLevel(inst *instance.Instance, player *entity.Player, args []string) (string, bool) {
	if len(args) != 1 {
		return "usage: /level <n>", true
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || level < 1 || level > entity.MaxLevel {
		return fmt.Sprintf("level must be between 1 and %d", entity.MaxLevel), true
	}
	class, ok := gs.content.Classes[player.ClassID]
	if !ok {
		return "unknown class", true
	}
	inst.WithPlayer(player.ID, func(p *entity.Player) {
		setPlayerLevel(p, class, level)
	})
	return fmt.Sprintf("level set to %d", level), true
}

// setPlayerLevel recomputes p's stats/vitals from scratch at level,
// applying class per-level growth (level-1) times, mirroring
// Player.MaybeLevelUp's progression math for an arbitrary target level.
func setPlayerLevel(p *entity.Player, class content.ClassDef, level int) {
	p.Level = level
	p.Exp = 0
	p.Stats = class.BaseStats
	for i := 1; i < level; i++ {
		p.Stats.Attack += class.PerLevelStats.Attack
		p.Stats.Defense += class.PerLevelStats.Defense
		p.Stats.Speed += class.PerLevelStats.Speed
		p.Stats.Dexterity += class.PerLevelStats.Dexterity
		p.Stats.Vitality += class.PerLevelStats.Vitality
		p.Stats.Wisdom += class.PerLevelStats.Wisdom
	}
	p.MaxHP = class.BaseHP + p.Stats.Vitality*4
	p.MaxMP = class.BaseMP + p.Stats.Wisdom*3
	p.HP = p.MaxHP
	p.MP = p.MaxMP
}

func (gs *GameServer) adminSpawn(inst *instance.Instance, player *entity.Player, args []string) (string, bool) {
	if len(args) != 1 {
		return "usage: /spawn <enemyId>", true
	}
	if _, ok := gs.content.Enemies[args[0]]; !ok {
		return "unknown enemy: " + args[0], true
	}
	if inst.SpawnEnemy(args[0], player.Pos) == nil {
		return "failed to spawn " + args[0], true
	}
	return "spawned " + args[0], true
}

func (gs *GameServer) adminTeleport(inst *instance.Instance, player *entity.Player, args []string) (string, bool) {
	if len(args) != 2 {
		return "usage: /tp <x> <y>", true
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	if errX != nil || errY != nil {
		return "invalid coordinates", true
	}
	found := inst.WithPlayer(player.ID, func(p *entity.Player) {
		p.Pos = geometry.Vec2{X: x, Y: y}
	})
	if !found {
		return "player not resident", true
	}
	return "teleported", true
}

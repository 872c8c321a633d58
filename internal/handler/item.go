package handler

import (
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// loadout serializes the equipment a player wears for INVENTORY.
type loadout struct {
	ch *world.Character
}

func (l loadout) Serialize() any {
	return map[string]int{"armor": l.ch.Armor, "weapon": l.ch.Weapon}
}

// equip puts on armor or weapon kind. Unknown kinds and non-equipment are
// ignored.
func equip(p *world.Entity, kind int, deps *Deps) bool {
	it := deps.Catalog.Items.Get(kind)
	if it == nil {
		return false
	}
	switch it.Category {
	case data.CategoryArmor:
		p.Char.Armor = kind
		p.Char.ArmorLevel = it.Level
	case data.CategoryWeapon:
		p.Char.Weapon = kind
		p.Char.WeaponLevel = it.Level
	default:
		return false
	}
	return true
}

// HandleLoot processes LOOT(itemId): the player picks up an item and its
// effect applies at once.
func HandleLoot(sess *net.Session, r *packet.Reader, deps *Deps) {
	itemID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	item := deps.World.Entities.Get(itemID)
	if item == nil || item.Type != world.TypeItem {
		deps.Log.Debug("LOOT of unknown item", zap.String("player", p.Player.Name), zap.String("item", itemID))
		return
	}
	tmpl := deps.Catalog.Items.Get(item.Kind)
	if tmpl == nil {
		deps.Log.Warn("LOOT of item without template", zap.Int("kind", item.Kind))
		return
	}

	deps.Spawn.TakeItem(item)
	w := deps.World
	w.Out.PushToPlayer(p.ID, packet.Loot(item.ID))

	switch {
	case tmpl.IsEquipment():
		equip(p, item.Kind, deps)
		w.Out.PushToAdjacentGroups(p.Group, packet.Equip(p.ID, item.Kind), "")
		w.Out.PushToPlayer(p.ID, packet.Inventory(p.Player.Inventory.Serialize()))
	case tmpl.Effect == data.EffectInvincible:
		p.Char.ResetHP()
		deps.Combat.GrantInvincibility(p, deps.Config.World.InvincibleDuration)
		w.Out.PushToPlayer(p.ID, packet.HitPoints(p.Char.MaxHP()))
	case tmpl.Effect == data.EffectHeal:
		if p.Char.HasFullHealth() {
			break
		}
		p.Char.Heal(tmpl.Amount)
		w.Out.PushToPlayer(p.ID, packet.Health(p.ID, p.Char.HP(), p.Char.MaxHP(), false))
	}
	p.Player.Dirty = true
}

// HandleOpen processes OPEN(chestId).
func HandleOpen(sess *net.Session, r *packet.Reader, deps *Deps) {
	chestID := r.ID()
	p := playerOf(sess, deps)
	if p == nil || !p.Alive() {
		return
	}
	chest := deps.World.Entities.Get(chestID)
	if chest == nil || chest.Type != world.TypeChest {
		deps.Log.Debug("OPEN of unknown chest", zap.String("chest", chestID))
		return
	}
	if item := deps.Spawn.OpenChest(chest); item != nil {
		deps.Log.Debug("chest opened",
			zap.String("player", p.Player.Name),
			zap.String("chest", chestID),
			zap.Int("kind", item.Kind),
		)
	}
}

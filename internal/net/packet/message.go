package packet

import "encoding/json"

// Message is one positional wire message: [opcode, fields...].
type Message []any

// Opcode returns the leading opcode, or -1 for a malformed message.
func (m Message) Opcode() int {
	if len(m) == 0 {
		return -1
	}
	op, ok := m[0].(int)
	if !ok {
		return -1
	}
	return op
}

// EncodeBatch serializes one flush worth of messages as a JSON array of arrays.
func EncodeBatch(batch []Message) ([]byte, error) {
	return json.Marshal(batch)
}

// Position is the optional {x,y} trailer of DROP.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func Spawn(state []any) Message {
	return append(Message{OpSpawn}, state...)
}

func Despawn(id string) Message {
	return Message{OpDespawn, id}
}

func Move(id string, x, y int) Message {
	return Message{OpMove, id, x, y}
}

func LootMove(id, itemID string) Message {
	return Message{OpLootMove, id, itemID}
}

func Loot(itemID string) Message {
	return Message{OpLoot, itemID}
}

func Attack(attackerID, targetID string) Message {
	return Message{OpAttack, attackerID, targetID}
}

func Equip(playerID string, itemKind int) Message {
	return Message{OpEquip, playerID, itemKind}
}

// Drop announces loot left by entityID. Mob kills pass a nil pos and the
// client places the item on the corpse tile. A position is for loot with no
// corpse to anchor it; no server path emits one today, but clients accept
// the field.
func Drop(entityID, itemID string, itemKind int, haters []string, pos *Position) Message {
	if haters == nil {
		haters = []string{}
	}
	return Message{OpDrop, entityID, itemID, itemKind, haters, pos}
}

func Chat(playerID, text, channel string) Message {
	return Message{OpChat, playerID, text, channel}
}

func Teleport(id string, x, y int) Message {
	return Message{OpTeleport, id, x, y}
}

func Damage(id string, points int, attackerID string) Message {
	return Message{OpDamage, id, points, attackerID}
}

// Health reports hp; regen marks passive regeneration.
func Health(id string, hp, maxHP int, regen bool) Message {
	if regen {
		return Message{OpHealth, id, hp, maxHP, 1}
	}
	return Message{OpHealth, id, hp, maxHP}
}

func HitPoints(maxHP int) Message {
	return Message{OpHP, maxHP}
}

func Population(worldID, total int) Message {
	return Message{OpPopulation, worldID, total}
}

func Level(level int) Message {
	return Message{OpLevel, level}
}

func XP(xp, maxXP, gained int) Message {
	return Message{OpXP, xp, maxXP, gained}
}

func Kill(mobKind int) Message {
	return Message{OpKill, mobKind}
}

func List(ids []string) Message {
	m := make(Message, 0, len(ids)+1)
	m = append(m, OpList)
	for _, id := range ids {
		m = append(m, id)
	}
	return m
}

func Destroy(id string) Message {
	return Message{OpDestroy, id}
}

func Blink(itemID string) Message {
	return Message{OpBlink, itemID}
}

func Inventory(payload any) Message {
	return Message{OpInventory, payload}
}

func Welcome(id, name string, x, y, hp int) Message {
	return Message{OpWelcome, id, name, x, y, hp}
}

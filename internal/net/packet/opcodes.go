package packet

// Opcodes lead every message array. Client and server share one numbering.
const (
	OpHello      = 0
	OpWelcome    = 1
	OpSpawn      = 2
	OpDespawn    = 3
	OpMove       = 4
	OpLootMove   = 5
	OpAggro      = 6
	OpAttack     = 7
	OpHit        = 8
	OpHurt       = 9
	OpHealth     = 10
	OpChat       = 11
	OpLoot       = 12
	OpEquip      = 13
	OpDrop       = 14
	OpTeleport   = 15
	OpDamage     = 16
	OpPopulation = 17
	OpKill       = 18
	OpList       = 19
	OpWho        = 20
	OpZone       = 21
	OpDestroy    = 22
	OpHP         = 23
	OpBlink      = 24
	OpOpen       = 25
	OpCheck      = 26
	OpXP         = 27
	OpLevel      = 28
	OpInventory  = 29
)

var opNames = map[int]string{
	OpHello: "HELLO", OpWelcome: "WELCOME", OpSpawn: "SPAWN", OpDespawn: "DESPAWN",
	OpMove: "MOVE", OpLootMove: "LOOTMOVE", OpAggro: "AGGRO", OpAttack: "ATTACK",
	OpHit: "HIT", OpHurt: "HURT", OpHealth: "HEALTH", OpChat: "CHAT", OpLoot: "LOOT",
	OpEquip: "EQUIP", OpDrop: "DROP", OpTeleport: "TELEPORT", OpDamage: "DAMAGE",
	OpPopulation: "POPULATION", OpKill: "KILL", OpList: "LIST", OpWho: "WHO",
	OpZone: "ZONE", OpDestroy: "DESTROY", OpHP: "HP", OpBlink: "BLINK", OpOpen: "OPEN",
	OpCheck: "CHECK", OpXP: "XP", OpLevel: "LEVEL", OpInventory: "INVENTORY",
}

// OpName returns the protocol name of an opcode, for logs.
func OpName(op int) string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "UNKNOWN"
}

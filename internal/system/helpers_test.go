package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

const testItemsYAML = `
items:
  - {kind: 60, name: sword1, category: weapon, level: 1}
  - {kind: 61, name: sword2, category: weapon, level: 2}
  - {kind: 21, name: clotharmor, category: armor, level: 1}
  - {kind: 35, name: flask, category: consumable, effect: heal, amount: 40}
  - {kind: 38, name: firepotion, category: consumable, effect: invincible}
  - {kind: 37, name: chest, category: chest}
`

const testMobsYAML = `
mobs:
  - kind: 2
    name: rat
    level: 1
    armor_level: 1
    weapon_level: 1
    xp: 3
    drops:
      - {item: flask, chance: 40}
      - {item: sword2, chance: 10}
  - {kind: 5, name: ogre, level: 4, armor_level: 3, weapon_level: 3, xp: 25, aggressive: true, aggro_range: 2}
`

const testNpcsYAML = `
npcs:
  - {kind: 40, name: guard}
`

// 60x30 tiles, 3x3 zones of 20x10.
const testMapYAML = `
width: 60
height: 30
zone_width: 20
zone_height: 10
starting_areas:
  - {x: 5, y: 5, w: 3, h: 3}
static_entities:
  - {kind: guard, x: 2, y: 2}
  - {kind: rat, x: 12, y: 10}
  - {kind: sword2, x: 14, y: 14}
mob_areas:
  - {id: 1, mob: rat, nb: 3, x: 40, y: 20, w: 10, h: 5}
chest_areas:
  - {id: 7, x: 10, y: 8, w: 5, h: 5, chest_x: 11, chest_y: 9, items: [flask]}
static_chests:
  - {x: 50, y: 2, items: [firepotion]}
`

// emptyMapYAML has the same geometry and nothing placed on it.
const emptyMapYAML = `
width: 60
height: 30
zone_width: 20
zone_height: 10
`

// stubFormulas makes combat deterministic.
type stubFormulas struct {
	damage int
}

func (f stubFormulas) CalcDamage(weaponLevel, armorLevel int) int  { return f.damage }
func (f stubFormulas) CalcRegen(maxHP int) int                     { return maxHP / 25 }
func (f stubFormulas) XPForLevel(level int) int                    { return 10*level*level + 40*level }
func (f stubFormulas) KillXP(mobXP, mobLevel, playerLevel int) int { return mobXP }

func (f stubFormulas) LevelFromXP(xp int) int {
	level := 1
	for xp >= f.XPForLevel(level) {
		xp -= f.XPForLevel(level)
		level++
	}
	return level
}

type fakeConn struct {
	msgs []packet.Message
}

func (c *fakeConn) Send(batch []packet.Message) error {
	c.msgs = append(c.msgs, batch...)
	return nil
}

func (c *fakeConn) count(op int) int {
	n := 0
	for _, m := range c.msgs {
		if m.Opcode() == op {
			n++
		}
	}
	return n
}

// index returns the position of the first op message whose second field is
// id, or -1.
func (c *fakeConn) index(op int, id string) int {
	for i, m := range c.msgs {
		if m.Opcode() == op && len(m) > 1 && m[1] == id {
			return i
		}
	}
	return -1
}

func (c *fakeConn) reset() { c.msgs = nil }

type testEnv struct {
	w      *world.World
	cat    *data.Catalog
	cfg    config.WorldConfig
	combat *CombatResolver
	spawn  *SpawnManager
}

func newTestEnv(t *testing.T, mapYAML string) *testEnv {
	t.Helper()
	cat, err := data.ParseCatalog([]byte(testItemsYAML), []byte(testMobsYAML), []byte(testNpcsYAML))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	m, err := data.ParseWorldMap([]byte(mapYAML), cat)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	cfg := config.Default().World
	log := zap.NewNop()
	w := world.New(1, m, event.NewBus(), rand.New(rand.NewSource(7)), log)
	spawn := NewSpawnManager(w, cat, m, cfg, log)
	combat := NewCombatResolver(w, cat, stubFormulas{damage: 10}, spawn, cfg, nil, log)
	return &testEnv{w: w, cat: cat, cfg: cfg, combat: combat, spawn: spawn}
}

func (e *testEnv) addPlayer(t *testing.T, name string, x, y int) (*world.Entity, *fakeConn) {
	t.Helper()
	p := world.NewPlayer(e.w.Entities.NextID(world.TypePlayer), name, x, y, 1)
	conn := &fakeConn{}
	if !e.w.AddPlayer(p, conn) {
		t.Fatalf("AddPlayer(%s) failed", name)
	}
	return p, conn
}

func (e *testEnv) addRat(t *testing.T, x, y int) *world.Entity {
	t.Helper()
	spec, err := e.spawn.mobSpec(2)
	if err != nil {
		t.Fatal(err)
	}
	m := world.NewMob(e.w.Entities.NextID(world.TypeMob), spec, x, y)
	if !e.w.AddEntity(m) {
		t.Fatal("AddEntity(mob) failed")
	}
	return m
}

// flush delivers pending spawns and queues.
func (e *testEnv) flush() {
	e.w.Zones.FlushIncoming(e.w.Out)
	e.w.Out.FlushQueues()
}

// settle flushes and forgets what was delivered.
func (e *testEnv) settle(conns ...*fakeConn) {
	e.flush()
	for _, c := range conns {
		c.reset()
	}
}

func (e *testEnv) advance(d time.Duration) {
	e.w.Timers.Advance(d)
	e.flush()
}

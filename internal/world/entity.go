package world

import (
	"fmt"

	"github.com/l1jgo/bqworld/internal/core/timer"
)

// Type discriminates the closed set of entity variants.
type Type int

const (
	TypePlayer Type = iota + 1
	TypeMob
	TypeNpc
	TypeItem
	TypeChest
)

func (t Type) String() string {
	switch t {
	case TypePlayer:
		return "player"
	case TypeMob:
		return "mob"
	case TypeNpc:
		return "npc"
	case TypeItem:
		return "item"
	case TypeChest:
		return "chest"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// idPrefix namespaces entity ids so they never collide across categories.
// Items and chests share the "9" space.
func (t Type) idPrefix() string {
	switch t {
	case TypePlayer:
		return "5"
	case TypeMob:
		return "7"
	case TypeNpc:
		return "8"
	default:
		return "9"
	}
}

// KindWarrior is the sprite kind every player is spawned with.
const KindWarrior = 1

// Orientations as sent on the wire.
const (
	OrientationUp    = 1
	OrientationDown  = 2
	OrientationLeft  = 3
	OrientationRight = 4
)

// Entity is the common record for everything that lives on the map. The
// variant pointers are set according to Type: Char for players and mobs,
// Mob for mobs, Player for players, Item for items and chests.
// Accessed only from the game loop goroutine.
type Entity struct {
	ID          string
	Type        Type
	Kind        int
	X, Y        int
	Orientation int

	Group        string   // home zone group, "" when not placed
	RecentlyLeft []string // groups left on the last membership change

	Char   *Character
	Mob    *MobState
	Player *PlayerState
	Item   *ItemState
}

// MobState holds what only mobs have.
type MobState struct {
	Hate       HateList
	SpawnX     int
	SpawnY     int
	Aggressive bool
	AggroRange int
	XP         int
	Area       *Area
	Static     bool // spawned from a fixed map position rather than an area
	Dead       bool
}

// Serializer is implemented by the inventory and skillbar collaborators.
type Serializer interface {
	Serialize() any
}

// PlayerState holds what only players have.
type PlayerState struct {
	Name      string
	CharID    int64  // persistence key, 0 when running without a store
	SessionID uint64 // connection identity
	XP        int
	Kills     int
	Inventory Serializer
	Skillbar  Serializer
	Dirty     bool
}

// ItemState holds what items and chests have.
type ItemState struct {
	Static    bool
	FromChest bool
	Contents  []int // chest only: item kinds that may drop when opened

	BlinkTask   timer.TaskID
	DespawnTask timer.TaskID
	Blinking    bool
}

// IsCharacter reports whether e can fight.
func (e *Entity) IsCharacter() bool {
	return e.Char != nil
}

// IsDroppedItem reports whether e is a transient item left by a kill.
// Dropped items are announced through DROP instead of SPAWN.
func (e *Entity) IsDroppedItem() bool {
	return e.Type == TypeItem && e.Item != nil && !e.Item.Static && !e.Item.FromChest
}

// IsTransient reports whether e is an item or chest on a blink-then-despawn clock.
func (e *Entity) IsTransient() bool {
	return e.Item != nil && !e.Item.Static
}

// Alive reports whether e is a character with hit points left.
func (e *Entity) Alive() bool {
	return e.Char != nil && e.Char.HP() > 0
}

func (e *Entity) Name() string {
	if e.Player != nil {
		return e.Player.Name
	}
	return e.ID
}

// Distance returns the Chebyshev distance from e to (x, y).
func (e *Entity) Distance(x, y int) int {
	return chebyshev(e.X, e.Y, x, y)
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := abs(x1 - x2)
	dy := abs(y1 - y2)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// State returns the SPAWN payload for e: [id, kind, x, y] followed by the
// per-variant fields.
func (e *Entity) State() []any {
	st := []any{e.ID, e.Kind, e.X, e.Y}
	switch e.Type {
	case TypeMob, TypeNpc:
		st = append(st, e.Orientation)
		if e.Char != nil && e.Char.Target != "" {
			st = append(st, e.Char.Target)
		}
	case TypePlayer:
		st = append(st, e.Player.Name, e.Orientation, e.Char.Armor, e.Char.Weapon, e.Char.Level)
		if e.Char.Target != "" {
			st = append(st, e.Char.Target)
		}
	}
	return st
}

// NewPlayer builds a player entity. The id is assigned by the caller from
// Registry.NextID.
func NewPlayer(id, name string, x, y, level int) *Entity {
	return &Entity{
		ID:          id,
		Type:        TypePlayer,
		Kind:        KindWarrior,
		X:           x,
		Y:           y,
		Orientation: OrientationDown,
		Char:        NewCharacter(level),
		Player:      &PlayerState{Name: name},
	}
}

// MobSpec carries the per-kind stats a mob is built from.
type MobSpec struct {
	Kind        int
	Level       int
	ArmorLevel  int
	WeaponLevel int
	XP          int
	Aggressive  bool
	AggroRange  int
}

func NewMob(id string, spec MobSpec, x, y int) *Entity {
	ch := NewCharacter(spec.Level)
	ch.ArmorLevel = spec.ArmorLevel
	ch.WeaponLevel = spec.WeaponLevel
	return &Entity{
		ID:          id,
		Type:        TypeMob,
		Kind:        spec.Kind,
		X:           x,
		Y:           y,
		Orientation: OrientationDown,
		Char:        ch,
		Mob: &MobState{
			SpawnX:     x,
			SpawnY:     y,
			Aggressive: spec.Aggressive,
			AggroRange: spec.AggroRange,
			XP:         spec.XP,
		},
	}
}

func NewNpc(id string, kind, x, y int) *Entity {
	return &Entity{ID: id, Type: TypeNpc, Kind: kind, X: x, Y: y, Orientation: OrientationDown}
}

func NewItem(id string, kind, x, y int) *Entity {
	return &Entity{ID: id, Type: TypeItem, Kind: kind, X: x, Y: y, Item: &ItemState{}}
}

func NewChest(id string, kind, x, y int, contents []int) *Entity {
	return &Entity{
		ID:   id,
		Type: TypeChest,
		Kind: kind,
		X:    x,
		Y:    y,
		Item: &ItemState{Contents: append([]int(nil), contents...)},
	}
}

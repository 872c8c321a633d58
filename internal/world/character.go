package world

import "github.com/l1jgo/bqworld/internal/core/timer"

// Character is the fighting half of players and mobs.
type Character struct {
	Level int
	hp    int

	Armor       int // equipped kinds (players)
	Weapon      int
	ArmorLevel  int
	WeaponLevel int

	// Target and Attackers form the aggro link: mob.Target == p.ID iff
	// mob.ID is in p.Attackers. Only Link/Unlink touch them.
	Target    string
	Attackers IDSet
	// Haters holds the mobs that carry this player in their hate list.
	Haters IDSet

	Invincible     bool
	InvincibleTask timer.TaskID
}

func NewCharacter(level int) *Character {
	if level < 1 {
		level = 1
	}
	c := &Character{Level: level}
	c.hp = c.MaxHP()
	return c
}

// MaxHP derives from level.
func (c *Character) MaxHP() int {
	return 80 + 20*c.Level
}

func (c *Character) HP() int {
	return c.hp
}

// SetHP clamps v to [0, MaxHP].
func (c *Character) SetHP(v int) {
	switch limit := c.MaxHP(); {
	case v < 0:
		c.hp = 0
	case v > limit:
		c.hp = limit
	default:
		c.hp = v
	}
}

// Heal adds n hit points and returns how many were actually gained.
func (c *Character) Heal(n int) int {
	before := c.hp
	c.SetHP(c.hp + n)
	return c.hp - before
}

func (c *Character) ResetHP() {
	c.hp = c.MaxHP()
}

func (c *Character) HasFullHealth() bool {
	return c.hp >= c.MaxHP()
}

// SetLevel changes the level and keeps hp inside the new bounds.
func (c *Character) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	c.Level = level
	c.SetHP(c.hp)
}

package system

// Formulas computes the numbers combat and progression run on. The Lua
// engine is the production implementation.
type Formulas interface {
	CalcDamage(weaponLevel, armorLevel int) int
	CalcRegen(maxHP int) int
	XPForLevel(level int) int
	LevelFromXP(xp int) int
	KillXP(mobXP, mobLevel, playerLevel int) int
}

// xpToReach returns the total xp a character needs to stand at level.
func xpToReach(f Formulas, level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += f.XPForLevel(l)
	}
	return total
}

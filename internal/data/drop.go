package data

import "fmt"

// Drop is one bucket of a mob's loot table.
type Drop struct {
	Item   string `yaml:"item"`
	Chance int    `yaml:"chance"` // percent; the remainder up to 100 is "no drop"
	Kind   int    `yaml:"-"`      // resolved by MobTable.ResolveDrops
}

func validateDrops(drops []Drop) error {
	total := 0
	for _, d := range drops {
		if d.Chance < 0 {
			return fmt.Errorf("drop %q: negative chance %d", d.Item, d.Chance)
		}
		total += d.Chance
	}
	if total > 100 {
		return fmt.Errorf("drop chances sum to %d, over 100", total)
	}
	return nil
}

// RollLoot picks the drop whose cumulative bucket [sum of previous chances,
// sum including this one) contains draw. draw is expected in [0,100).
// Returns false when draw falls in the residual no-drop range.
func RollLoot(drops []Drop, draw int) (Drop, bool) {
	cum := 0
	for _, d := range drops {
		cum += d.Chance
		if draw < cum {
			return d, true
		}
	}
	return Drop{}, false
}

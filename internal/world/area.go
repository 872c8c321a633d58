package world

import (
	"math/rand"

	"github.com/l1jgo/bqworld/internal/data"
)

type AreaKind int

const (
	AreaMob AreaKind = iota + 1
	AreaChest
)

// Area owns a set of mobs inside a rectangle. Chest areas also hold the
// chest position and the item pool of the chest they reward.
type Area struct {
	ID      int
	Kind    AreaKind
	Bounds  data.Rect
	Count   int // target population (mob areas)
	MobKind int // mob areas only

	ChestX, ChestY int
	Items          []int

	mobs IDSet
	// Respawned latches once the area has been filled after start; chest
	// areas pay out only on the first emptying after that.
	Respawned bool
}

func (a *Area) Contains(x, y int) bool {
	return a.Bounds.Contains(x, y)
}

func (a *Area) Add(e *Entity) {
	a.mobs.Add(e.ID)
	if e.Mob != nil {
		e.Mob.Area = a
	}
	if a.Count > 0 && a.mobs.Len() >= a.Count {
		a.Respawned = true
	}
}

// Remove drops mob id and reports whether the area just emptied after
// having been full. The latch resets, so it reports true once per refill.
func (a *Area) Remove(id string) bool {
	if !a.mobs.Remove(id) {
		return false
	}
	if a.mobs.Len() > 0 || !a.Respawned {
		return false
	}
	a.Respawned = false
	return true
}

func (a *Area) Has(id string) bool {
	return a.mobs.Has(id)
}

func (a *Area) Len() int {
	return a.mobs.Len()
}

func (a *Area) MobIDs() []string {
	return a.mobs.IDs()
}

const maxPlacementAttempts = 64

// RandomPosition picks a tile inside the area that ok accepts. It gives up
// after a bounded number of attempts.
func (a *Area) RandomPosition(rng *rand.Rand, ok func(x, y int) bool) (int, int, bool) {
	if a.Bounds.W <= 0 || a.Bounds.H <= 0 {
		return 0, 0, false
	}
	for i := 0; i < maxPlacementAttempts; i++ {
		x := a.Bounds.X + rng.Intn(a.Bounds.W)
		y := a.Bounds.Y + rng.Intn(a.Bounds.H)
		if ok(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

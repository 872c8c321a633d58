package world

// Link makes mob attack player: mob.Target = player and mob is recorded in
// player's attackers. Any previous target of mob is released first. Linking
// an existing pair is a no-op.
func Link(reg *Registry, mob, player *Entity) {
	if mob.Char.Target == player.ID && player.Char.Attackers.Has(mob.ID) {
		return
	}
	ClearAggro(reg, mob)
	mob.Char.Target = player.ID
	player.Char.Attackers.Add(mob.ID)
}

// Unlink tears down the mob → player link on both sides if present.
func Unlink(mob, player *Entity) {
	if mob.Char.Target == player.ID {
		mob.Char.Target = ""
	}
	player.Char.Attackers.Remove(mob.ID)
}

// ClearAggro drops mob's current target link. A target id that no longer
// resolves is simply forgotten.
func ClearAggro(reg *Registry, mob *Entity) {
	if mob.Char.Target == "" {
		return
	}
	if p := reg.Character(mob.Char.Target); p != nil {
		p.Char.Attackers.Remove(mob.ID)
	}
	mob.Char.Target = ""
}

// detach releases every link e takes part in before it leaves the registry.
// A player keeps its entries in mob hate lists; mobs forget it on their own
// schedule and absent players are skipped during target selection.
func detach(reg *Registry, e *Entity) {
	if e.Char == nil {
		return
	}
	switch e.Type {
	case TypeMob:
		ClearAggro(reg, e)
		for _, pid := range e.Mob.Hate.IDs() {
			if p := reg.Character(pid); p != nil {
				p.Char.Haters.Remove(e.ID)
			}
		}
		e.Mob.Hate.Clear()
	case TypePlayer:
		for _, mid := range e.Char.Attackers.IDs() {
			if m := reg.Character(mid); m != nil {
				Unlink(m, e)
			}
		}
		e.Char.Attackers.Clear()
		e.Char.Haters.Clear()
		e.Char.Target = ""
	}
}

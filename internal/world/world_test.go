package world

import (
	"testing"

	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/net/packet"
)

func TestDespawnBroadcastsOnce(t *testing.T) {
	w := rowWorld(t)
	_, conn := addPlayer(t, w, "ann", 5, 5)
	m := addMob(t, w, 12, 5)
	settle(w, conn)

	w.Despawn(m)
	w.Despawn(m)
	w.Out.FlushQueues()

	if conn.count(packet.OpDespawn) != 1 {
		t.Errorf("DESPAWN count = %d, want 1", conn.count(packet.OpDespawn))
	}
	if w.Entities.Get(m.ID) != nil || m.Group != "" {
		t.Error("despawned entity still indexed")
	}
	for _, gid := range w.Map.Groups() {
		if _, ok := w.Zones.Group(gid).Entities[m.ID]; ok {
			t.Errorf("entity still member of %s", gid)
		}
	}
}

func TestRemovePlayerReleasesLinks(t *testing.T) {
	w := rowWorld(t)
	var exited []string
	event.Subscribe(w.Bus, func(ev event.PlayerExited) { exited = append(exited, ev.PlayerID) })

	p, _ := addPlayer(t, w, "ann", 5, 5)
	m := addMob(t, w, 6, 5)
	m.Mob.Hate.Add(p.ID, 3)
	p.Char.Haters.Add(m.ID)
	Link(w.Entities, m, p)

	w.RemovePlayer(p)

	if m.Char.Target != "" {
		t.Errorf("mob still targets %s", m.Char.Target)
	}
	if w.Out.HasQueue(p.ID) || w.Entities.Get(p.ID) != nil {
		t.Error("player not fully removed")
	}
	if len(exited) != 1 || exited[0] != p.ID {
		t.Errorf("PlayerExited events = %v", exited)
	}
}

func TestLinkReplacesPreviousTarget(t *testing.T) {
	w := rowWorld(t)
	p1, _ := addPlayer(t, w, "ann", 5, 5)
	p2, _ := addPlayer(t, w, "bob", 6, 5)
	m := addMob(t, w, 7, 5)

	Link(w.Entities, m, p1)
	Link(w.Entities, m, p1)
	Link(w.Entities, m, p2)

	if p1.Char.Attackers.Has(m.ID) {
		t.Error("old target still lists the mob as attacker")
	}
	if m.Char.Target != p2.ID || !p2.Char.Attackers.Has(m.ID) {
		t.Error("new link incomplete")
	}
	Unlink(m, p2)
	if m.Char.Target != "" || p2.Char.Attackers.Len() != 0 {
		t.Error("Unlink left a half link")
	}
}

func TestRelevantEntityList(t *testing.T) {
	w := rowWorld(t)
	p, conn := addPlayer(t, w, "ann", 5, 5)
	m := addMob(t, w, 15, 5)
	addMob(t, w, 45, 5) // out of sight
	settle(w, conn)

	w.PushRelevantEntityListTo(p)
	w.Out.FlushQueues()
	msgs := conn.all()
	if len(msgs) != 1 || msgs[0].Opcode() != packet.OpList {
		t.Fatalf("messages = %v", msgs)
	}
	if len(msgs[0]) != 2 || msgs[0][1] != m.ID {
		t.Errorf("LIST = %v, want only %s", msgs[0], m.ID)
	}
}

func TestPositionChecks(t *testing.T) {
	w := rowWorld(t)
	w.Map.(*gridMap).blocked = map[[2]int]bool{{3, 3}: true}
	addMob(t, w, 4, 4)

	tests := []struct {
		x, y int
		free bool
	}{
		{1, 1, true},
		{3, 3, false},
		{4, 4, false},
		{-1, 0, false},
		{50, 0, false},
	}
	for _, tt := range tests {
		if got := w.IsFree(tt.x, tt.y); got != tt.free {
			t.Errorf("IsFree(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.free)
		}
	}
	if w.Population() != 0 {
		t.Errorf("population = %d", w.Population())
	}
}

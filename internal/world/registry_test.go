package world

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRegistryNamespacedIDs(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	seen := map[string]bool{}
	for _, typ := range []Type{TypePlayer, TypeMob, TypeNpc, TypeItem, TypeChest, TypePlayer, TypeMob} {
		id := r.NextID(typ)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, typ.idPrefix()) {
			t.Errorf("id %s lacks prefix for %s", id, typ)
		}
	}
}

func TestRegistryIndexes(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	p := NewPlayer(r.NextID(TypePlayer), "ann", 1, 1, 1)
	m := NewMob(r.NextID(TypeMob), MobSpec{Kind: 2, Level: 1}, 2, 2)
	it := NewItem(r.NextID(TypeItem), 35, 3, 3)
	for _, e := range []*Entity{p, m, it} {
		if !r.Add(e) {
			t.Fatalf("Add(%s) failed", e.ID)
		}
	}
	if r.Add(p) {
		t.Error("duplicate Add should fail")
	}
	if r.Count(TypePlayer) != 1 || r.Count(TypeMob) != 1 || r.Len() != 3 {
		t.Errorf("counts: players %d mobs %d total %d", r.Count(TypePlayer), r.Count(TypeMob), r.Len())
	}
	if r.PlayerByName("ann") != p {
		t.Error("PlayerByName failed")
	}
	if r.Character(it.ID) != nil {
		t.Error("items are not characters")
	}

	if r.Remove(m.ID) != m || r.Get(m.ID) != nil || r.Count(TypeMob) != 0 {
		t.Error("Remove did not clear every index")
	}
	if r.Remove("7999") != nil {
		t.Error("unknown id should be a no-op")
	}

	var items int
	r.Items(func(*Entity) { items++ })
	if items != 1 {
		t.Errorf("items visited = %d", items)
	}
}

func TestEntityState(t *testing.T) {
	p := NewPlayer("51", "ann", 3, 4, 2)
	p.Char.Armor, p.Char.Weapon = 21, 60
	m := NewMob("71", MobSpec{Kind: 2, Level: 1}, 5, 6)
	m.Char.Target = "51"
	it := NewItem("91", 35, 7, 8)

	tests := []struct {
		name string
		e    *Entity
		want []any
	}{
		{"player", p, []any{"51", KindWarrior, 3, 4, "ann", OrientationDown, 21, 60, 2}},
		{"mob with target", m, []any{"71", 2, 5, 6, OrientationDown, "51"}},
		{"item", it, []any{"91", 35, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.State()
			if len(got) != len(tt.want) {
				t.Fatalf("State() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("State()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

package data

import (
	"errors"
	"testing"
)

const testItemsYAML = `
items:
  - {kind: 60, name: sword1, category: weapon, level: 1}
  - {kind: 61, name: sword2, category: weapon, level: 2}
  - {kind: 21, name: clotharmor, category: armor, level: 1}
  - {kind: 22, name: leatherarmor, category: armor, level: 2}
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

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := ParseCatalog([]byte(testItemsYAML), []byte(testMobsYAML), []byte(testNpcsYAML))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func TestCatalogResolve(t *testing.T) {
	cat := testCatalog(t)
	tests := []struct {
		name  string
		kind  int
		class EntityClass
	}{
		{"rat", 2, ClassMob},
		{"guard", 40, ClassNpc},
		{"sword1", 60, ClassItem},
		{"chest", 37, ClassChest},
	}
	for _, tt := range tests {
		kind, class, err := cat.Resolve(tt.name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.name, err)
		}
		if kind != tt.kind || class != tt.class {
			t.Errorf("Resolve(%q) = %d,%s want %d,%s", tt.name, kind, class, tt.kind, tt.class)
		}
		if got := cat.Class(tt.kind); got != tt.class {
			t.Errorf("Class(%d) = %s, want %s", tt.kind, got, tt.class)
		}
	}
	if _, _, err := cat.Resolve("dragon"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Resolve(dragon) err = %v, want ErrUnknownKind", err)
	}
	if k, err := cat.ChestKind(); err != nil || k != 37 {
		t.Errorf("ChestKind() = %d,%v want 37", k, err)
	}
}

func TestResolveDropsBindsKinds(t *testing.T) {
	cat := testCatalog(t)
	rat := cat.Mobs.ByName("rat")
	if rat.Drops[0].Kind != 35 || rat.Drops[1].Kind != 61 {
		t.Errorf("drops resolved to %d,%d want 35,61", rat.Drops[0].Kind, rat.Drops[1].Kind)
	}
}

func TestResolveDropsUnknownItem(t *testing.T) {
	items, _ := parseItemTable([]byte(testItemsYAML))
	mobs, err := parseMobTable([]byte("mobs:\n  - {kind: 2, name: rat, drops: [{item: cake, chance: 5}]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := mobs.ResolveDrops(items); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestItemTableRejectsBadCategory(t *testing.T) {
	if _, err := parseItemTable([]byte("items:\n  - {kind: 1, name: x, category: food}\n")); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestItemLevel(t *testing.T) {
	cat := testCatalog(t)
	if got := cat.Items.Level(61); got != 2 {
		t.Errorf("Level(sword2) = %d, want 2", got)
	}
	if got := cat.Items.Level(999); got != 1 {
		t.Errorf("Level(unknown) = %d, want 1", got)
	}
}

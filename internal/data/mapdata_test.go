package data

import (
	"math/rand"
	"path/filepath"
	"testing"
)

const testMapYAML = `
width: 60
height: 30
zone_width: 20
zone_height: 10
blocked:
  - {x: 0, y: 0, w: 2, h: 1}
starting_areas:
  - {x: 5, y: 5, w: 3, h: 3}
static_entities:
  - {kind: guard, x: 10, y: 10}
  - {kind: rat, x: 12, y: 10}
  - {kind: sword2, x: 14, y: 10}
mob_areas:
  - {id: 1, mob: rat, nb: 3, x: 40, y: 20, w: 10, h: 5}
chest_areas:
  - {id: 7, x: 10, y: 8, w: 5, h: 5, chest_x: 11, chest_y: 9, items: [flask, sword2]}
static_chests:
  - {x: 50, y: 2, items: [firepotion]}
`

func testMap(t *testing.T) *WorldMap {
	t.Helper()
	m, err := ParseWorldMap([]byte(testMapYAML), testCatalog(t))
	if err != nil {
		t.Fatalf("ParseWorldMap: %v", err)
	}
	return m
}

func TestGroupIDFor(t *testing.T) {
	m := testMap(t)
	tests := []struct {
		x, y int
		want string
	}{
		{0, 0, "0-0"},
		{19, 9, "0-0"},
		{20, 9, "1-0"},
		{59, 29, "2-2"},
		{25, 15, "1-1"},
		{-1, 0, ""},
		{0, -1, ""},
		{60, 5, ""},
		{5, 30, ""},
	}
	for _, tt := range tests {
		if got := m.GroupIDFor(tt.x, tt.y); got != tt.want {
			t.Errorf("GroupIDFor(%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
	if len(m.Groups()) != 9 {
		t.Errorf("len(Groups()) = %d, want 9", len(m.Groups()))
	}
}

func TestAdjacentGroups(t *testing.T) {
	m := testMap(t)
	tests := []struct {
		id   string
		want int
	}{
		{"0-0", 4},
		{"1-0", 6},
		{"1-1", 9},
		{"2-2", 4},
		{"9-9", 0},
	}
	for _, tt := range tests {
		adj := m.AdjacentGroups(tt.id)
		if len(adj) != tt.want {
			t.Errorf("AdjacentGroups(%q) = %v, want %d groups", tt.id, adj, tt.want)
			continue
		}
		if tt.want == 0 {
			continue
		}
		self := false
		for _, g := range adj {
			if g == tt.id {
				self = true
			}
		}
		if !self {
			t.Errorf("AdjacentGroups(%q) does not include itself", tt.id)
		}
	}
}

func TestBlockedAndBounds(t *testing.T) {
	m := testMap(t)
	if !m.IsBlocked(1, 0) {
		t.Error("(1,0) should be blocked")
	}
	if m.IsBlocked(2, 0) {
		t.Error("(2,0) should be free")
	}
	if !m.IsOutOfBounds(60, 0) || !m.IsOutOfBounds(-1, 3) {
		t.Error("bounds check failed")
	}
	if !m.IsBlocked(-1, -1) {
		t.Error("out-of-bounds positions count as blocked")
	}
}

func TestRandomStartingPosition(t *testing.T) {
	m := testMap(t)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		x, y := m.RandomStartingPosition(rng)
		if !(Rect{X: 5, Y: 5, W: 3, H: 3}).Contains(x, y) {
			t.Fatalf("starting position (%d,%d) outside starting area", x, y)
		}
	}
}

func TestMapResolvesKinds(t *testing.T) {
	m := testMap(t)
	if len(m.StaticEntities()) != 3 {
		t.Fatalf("statics = %d, want 3", len(m.StaticEntities()))
	}
	if s := m.StaticEntities()[1]; s.Kind != 2 || s.Class != ClassMob {
		t.Errorf("rat resolved to %d/%s", s.Kind, s.Class)
	}
	if a := m.MobAreas()[0]; a.Kind != 2 || a.Count != 3 || a.W != 10 {
		t.Errorf("mob area = %+v", a)
	}
	if a := m.ChestAreas()[0]; len(a.ItemKinds) != 2 || a.ItemKinds[1] != 61 {
		t.Errorf("chest area items = %v", a.ItemKinds)
	}
	if c := m.StaticChests()[0]; len(c.ItemKinds) != 1 || c.ItemKinds[0] != 38 {
		t.Errorf("static chest items = %v", c.ItemKinds)
	}
}

func TestMapConfigurationErrors(t *testing.T) {
	cat := testCatalog(t)
	bad := map[string]string{
		"area out of bounds": "width: 10\nheight: 10\nzone_width: 5\nzone_height: 5\nmob_areas:\n  - {id: 1, mob: rat, nb: 1, x: 8, y: 8, w: 5, h: 5}\n",
		"unknown mob":        "width: 10\nheight: 10\nzone_width: 5\nzone_height: 5\nmob_areas:\n  - {id: 1, mob: dragon, nb: 1, x: 0, y: 0, w: 5, h: 5}\n",
		"empty chest pool":   "width: 10\nheight: 10\nzone_width: 5\nzone_height: 5\nchest_areas:\n  - {id: 1, x: 0, y: 0, w: 5, h: 5, chest_x: 1, chest_y: 1}\n",
		"zero zone":          "width: 10\nheight: 10\nzone_width: 0\nzone_height: 5\n",
		"unknown static":     "width: 10\nheight: 10\nzone_width: 5\nzone_height: 5\nstatic_entities:\n  - {kind: dragon, x: 1, y: 1}\n",
	}
	for name, raw := range bad {
		if _, err := ParseWorldMap([]byte(raw), cat); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseGroupID(t *testing.T) {
	if x, y, ok := ParseGroupID("3-4"); !ok || x != 3 || y != 4 {
		t.Errorf("ParseGroupID(3-4) = %d,%d,%v", x, y, ok)
	}
	if _, _, ok := ParseGroupID("bad"); ok {
		t.Error("ParseGroupID(bad) should fail")
	}
}

func TestShippedData(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join("..", "..", "data", "yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	m, err := LoadWorldMap(filepath.Join("..", "..", "data", "yaml", "world_map.yaml"), cat)
	if err != nil {
		t.Fatalf("LoadWorldMap: %v", err)
	}
	if len(m.MobAreas()) == 0 || len(m.StaticEntities()) == 0 {
		t.Error("shipped map places nothing")
	}
	for _, r := range m.starting {
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				if m.IsBlocked(x, y) {
					t.Errorf("starting tile (%d,%d) is blocked", x, y)
				}
			}
		}
	}
}

package data

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rect is an axis-aligned tile region.
type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// StaticEntity is a map-placed npc, mob, item or chest.
type StaticEntity struct {
	Name  string      `yaml:"kind"`
	X     int         `yaml:"x"`
	Y     int         `yaml:"y"`
	Kind  int         `yaml:"-"`
	Class EntityClass `yaml:"-"`
}

// MobArea is a roaming region populated with Count mobs of one kind.
type MobArea struct {
	ID    int    `yaml:"id"`
	Mob   string `yaml:"mob"`
	Count int    `yaml:"nb"`
	Rect  `yaml:",inline"`
	Kind  int `yaml:"-"`
}

// ChestArea spawns a chest at (ChestX, ChestY) once every mob standing in
// it has been killed.
type ChestArea struct {
	ID        int `yaml:"id"`
	Rect      `yaml:",inline"`
	ChestX    int      `yaml:"chest_x"`
	ChestY    int      `yaml:"chest_y"`
	Items     []string `yaml:"items"`
	ItemKinds []int    `yaml:"-"`
}

// StaticChest is a chest placed directly on the map.
type StaticChest struct {
	X         int      `yaml:"x"`
	Y         int      `yaml:"y"`
	Items     []string `yaml:"items"`
	ItemKinds []int    `yaml:"-"`
}

type worldMapFile struct {
	Width          int            `yaml:"width"`
	Height         int            `yaml:"height"`
	ZoneWidth      int            `yaml:"zone_width"`
	ZoneHeight     int            `yaml:"zone_height"`
	Blocked        []Rect         `yaml:"blocked"`
	StartingAreas  []Rect         `yaml:"starting_areas"`
	StaticEntities []StaticEntity `yaml:"static_entities"`
	MobAreas       []MobArea      `yaml:"mob_areas"`
	ChestAreas     []ChestArea    `yaml:"chest_areas"`
	StaticChests   []StaticChest  `yaml:"static_chests"`
}

// WorldMap answers the geometric questions the simulation asks: collision,
// bounds, and zone group partitioning. Read-only after load.
type WorldMap struct {
	width, height int
	zoneW, zoneH  int
	groupsX       int
	groupsY       int
	blocked       []bool // [y*width + x]
	starting      []Rect
	groups        []string
	adjacent      map[string][]string

	statics      []StaticEntity
	mobAreas     []MobArea
	chestAreas   []ChestArea
	staticChests []StaticChest
}

// LoadWorldMap loads the world map and resolves every kind name against the
// catalog.
func LoadWorldMap(path string, cat *Catalog) (*WorldMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world map %s: %w", path, err)
	}
	return ParseWorldMap(raw, cat)
}

func ParseWorldMap(raw []byte, cat *Catalog) (*WorldMap, error) {
	var f worldMapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse world map: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("world map: invalid size %dx%d", f.Width, f.Height)
	}
	if f.ZoneWidth <= 0 || f.ZoneHeight <= 0 {
		return nil, fmt.Errorf("world map: invalid zone size %dx%d", f.ZoneWidth, f.ZoneHeight)
	}

	m := &WorldMap{
		width:    f.Width,
		height:   f.Height,
		zoneW:    f.ZoneWidth,
		zoneH:    f.ZoneHeight,
		groupsX:  (f.Width + f.ZoneWidth - 1) / f.ZoneWidth,
		groupsY:  (f.Height + f.ZoneHeight - 1) / f.ZoneHeight,
		blocked:  make([]bool, f.Width*f.Height),
		starting: f.StartingAreas,
	}
	for _, r := range f.Blocked {
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				if !m.IsOutOfBounds(x, y) {
					m.blocked[y*m.width+x] = true
				}
			}
		}
	}
	m.initGroups()

	if len(m.starting) == 0 {
		m.starting = []Rect{{X: 0, Y: 0, W: f.Width, H: f.Height}}
	}
	for _, r := range m.starting {
		if err := m.checkRect(r); err != nil {
			return nil, fmt.Errorf("starting area: %w", err)
		}
	}

	for _, s := range f.StaticEntities {
		kind, class, err := cat.Resolve(s.Name)
		if err != nil {
			return nil, fmt.Errorf("static entity at (%d,%d): %w", s.X, s.Y, err)
		}
		if m.IsOutOfBounds(s.X, s.Y) {
			return nil, fmt.Errorf("static entity %q at (%d,%d) is out of bounds", s.Name, s.X, s.Y)
		}
		s.Kind, s.Class = kind, class
		m.statics = append(m.statics, s)
	}

	for _, a := range f.MobAreas {
		mob := cat.Mobs.ByName(a.Mob)
		if mob == nil {
			return nil, fmt.Errorf("mob area %d: mob %q: %w", a.ID, a.Mob, ErrUnknownKind)
		}
		if a.Count <= 0 {
			return nil, fmt.Errorf("mob area %d: nb must be positive", a.ID)
		}
		if err := m.checkRect(a.Rect); err != nil {
			return nil, fmt.Errorf("mob area %d: %w", a.ID, err)
		}
		a.Kind = mob.Kind
		m.mobAreas = append(m.mobAreas, a)
	}

	for _, a := range f.ChestAreas {
		if err := m.checkRect(a.Rect); err != nil {
			return nil, fmt.Errorf("chest area %d: %w", a.ID, err)
		}
		if m.IsOutOfBounds(a.ChestX, a.ChestY) {
			return nil, fmt.Errorf("chest area %d: chest position (%d,%d) out of bounds", a.ID, a.ChestX, a.ChestY)
		}
		kinds, err := resolveItems(cat, a.Items)
		if err != nil {
			return nil, fmt.Errorf("chest area %d: %w", a.ID, err)
		}
		a.ItemKinds = kinds
		m.chestAreas = append(m.chestAreas, a)
	}

	for _, c := range f.StaticChests {
		if m.IsOutOfBounds(c.X, c.Y) {
			return nil, fmt.Errorf("static chest at (%d,%d) out of bounds", c.X, c.Y)
		}
		kinds, err := resolveItems(cat, c.Items)
		if err != nil {
			return nil, fmt.Errorf("static chest at (%d,%d): %w", c.X, c.Y, err)
		}
		c.ItemKinds = kinds
		m.staticChests = append(m.staticChests, c)
	}
	return m, nil
}

func resolveItems(cat *Catalog, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("empty item pool")
	}
	kinds := make([]int, 0, len(names))
	for _, n := range names {
		it := cat.Items.ByName(n)
		if it == nil || it.Category == CategoryChest {
			return nil, fmt.Errorf("item %q: %w", n, ErrUnknownKind)
		}
		kinds = append(kinds, it.Kind)
	}
	return kinds, nil
}

func (m *WorldMap) checkRect(r Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("empty bounds %+v", r)
	}
	if m.IsOutOfBounds(r.X, r.Y) || m.IsOutOfBounds(r.X+r.W-1, r.Y+r.H-1) {
		return fmt.Errorf("bounds %+v outside %dx%d map", r, m.width, m.height)
	}
	return nil
}

func (m *WorldMap) initGroups() {
	m.adjacent = make(map[string][]string, m.groupsX*m.groupsY)
	for gy := 0; gy < m.groupsY; gy++ {
		for gx := 0; gx < m.groupsX; gx++ {
			m.groups = append(m.groups, groupID(gx, gy))
		}
	}
	for gy := 0; gy < m.groupsY; gy++ {
		for gx := 0; gx < m.groupsX; gx++ {
			var adj []string
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := gx+dx, gy+dy
					if nx < 0 || ny < 0 || nx >= m.groupsX || ny >= m.groupsY {
						continue
					}
					adj = append(adj, groupID(nx, ny))
				}
			}
			m.adjacent[groupID(gx, gy)] = adj
		}
	}
}

func groupID(gx, gy int) string {
	return strconv.Itoa(gx) + "-" + strconv.Itoa(gy)
}

// ParseGroupID splits a "gx-gy" group id.
func ParseGroupID(id string) (gx, gy int, ok bool) {
	a, b, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	x, err1 := strconv.Atoi(a)
	y, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}

// GroupIDFor returns the id of the zone group owning (x,y), or "" off the map.
func (m *WorldMap) GroupIDFor(x, y int) string {
	if m.IsOutOfBounds(x, y) {
		return ""
	}
	return groupID(x/m.zoneW, y/m.zoneH)
}

// AdjacentGroups returns the 3x3 neighbourhood of id clipped to the map,
// including id itself. Unknown ids yield nil.
func (m *WorldMap) AdjacentGroups(id string) []string {
	return m.adjacent[id]
}

// Groups returns every group id in row-major order.
func (m *WorldMap) Groups() []string {
	return m.groups
}

func (m *WorldMap) IsOutOfBounds(x, y int) bool {
	return x < 0 || y < 0 || x >= m.width || y >= m.height
}

// IsBlocked reports whether (x,y) is a collision tile. Out-of-bounds
// positions count as blocked.
func (m *WorldMap) IsBlocked(x, y int) bool {
	if m.IsOutOfBounds(x, y) {
		return true
	}
	return m.blocked[y*m.width+x]
}

// RandomStartingPosition picks a free tile inside a random starting area.
func (m *WorldMap) RandomStartingPosition(rng *rand.Rand) (int, int) {
	for attempt := 0; attempt < 100; attempt++ {
		r := m.starting[rng.Intn(len(m.starting))]
		x := r.X + rng.Intn(r.W)
		y := r.Y + rng.Intn(r.H)
		if !m.IsBlocked(x, y) {
			return x, y
		}
	}
	r := m.starting[0]
	return r.X, r.Y
}

func (m *WorldMap) Size() (int, int)               { return m.width, m.height }
func (m *WorldMap) StaticEntities() []StaticEntity { return m.statics }
func (m *WorldMap) MobAreas() []MobArea            { return m.mobAreas }
func (m *WorldMap) ChestAreas() []ChestArea        { return m.chestAreas }
func (m *WorldMap) StaticChests() []StaticChest    { return m.staticChests }

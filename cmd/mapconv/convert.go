package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Tiled JSON structures
// ---------------------------------------------------------------------------

type TiledMap struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	TileWidth  int            `json:"tilewidth"`
	TileHeight int            `json:"tileheight"`
	Layers     []TiledLayer   `json:"layers"`
	Tilesets   []TiledTileset `json:"tilesets"`
}

type TiledLayer struct {
	Name    string        `json:"name"`
	Type    string        `json:"type"` // "tilelayer" or "objectgroup"
	Data    []uint32      `json:"data"`
	Objects []TiledObject `json:"objects"`
}

type TiledObject struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Properties []TiledProperty `json:"properties"`
}

type TiledTileset struct {
	FirstGID int         `json:"firstgid"`
	Tiles    []TiledTile `json:"tiles"`
}

type TiledTile struct {
	ID         int             `json:"id"`
	Properties []TiledProperty `json:"properties"`
}

type TiledProperty struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Tiled stores flip flags in the top bits of every gid.
const gidMask = 0x1FFFFFFF

func parseTiledMap(raw []byte) (*TiledMap, error) {
	var tm TiledMap
	if err := json.Unmarshal(raw, &tm); err != nil {
		return nil, err
	}
	if tm.Width <= 0 || tm.Height <= 0 {
		return nil, fmt.Errorf("invalid map size %dx%d", tm.Width, tm.Height)
	}
	if tm.TileWidth <= 0 || tm.TileHeight <= 0 {
		return nil, fmt.Errorf("invalid tile size %dx%d", tm.TileWidth, tm.TileHeight)
	}
	return &tm, nil
}

// ---------------------------------------------------------------------------
// YAML structures mirroring the server world map file
// ---------------------------------------------------------------------------

type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type StaticEntity struct {
	Kind string `yaml:"kind"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

type MobArea struct {
	ID    int    `yaml:"id"`
	Mob   string `yaml:"mob"`
	Count int    `yaml:"nb"`
	Rect  `yaml:",inline"`
}

type ChestArea struct {
	ID     int `yaml:"id"`
	Rect   `yaml:",inline"`
	ChestX int      `yaml:"chest_x"`
	ChestY int      `yaml:"chest_y"`
	Items  []string `yaml:"items,flow"`
}

type StaticChest struct {
	X     int      `yaml:"x"`
	Y     int      `yaml:"y"`
	Items []string `yaml:"items,flow"`
}

type WorldMapFile struct {
	Width          int            `yaml:"width"`
	Height         int            `yaml:"height"`
	ZoneWidth      int            `yaml:"zone_width"`
	ZoneHeight     int            `yaml:"zone_height"`
	Blocked        []Rect         `yaml:"blocked,omitempty"`
	StartingAreas  []Rect         `yaml:"starting_areas,omitempty"`
	StaticEntities []StaticEntity `yaml:"static_entities,omitempty"`
	MobAreas       []MobArea      `yaml:"mob_areas,omitempty"`
	ChestAreas     []ChestArea    `yaml:"chest_areas,omitempty"`
	StaticChests   []StaticChest  `yaml:"static_chests,omitempty"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// convert builds the world map from tm. Objects that cannot be converted
// are skipped and reported in warnings.
func convert(tm *TiledMap, zoneW, zoneH int) (*WorldMapFile, []string) {
	out := &WorldMapFile{
		Width:      tm.Width,
		Height:     tm.Height,
		ZoneWidth:  zoneW,
		ZoneHeight: zoneH,
	}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	out.Blocked = blockedRects(collisionGrid(tm), tm.Width, tm.Height)

	for _, layer := range tm.Layers {
		if layer.Type != "objectgroup" {
			continue
		}
		for _, obj := range layer.Objects {
			r := tm.tileRect(obj)
			switch strings.ToLower(layer.Name) {
			case "start":
				out.StartingAreas = append(out.StartingAreas, r)
			case "entities":
				if obj.Name == "" {
					warn("entity %d at (%d,%d) has no kind", obj.ID, r.X, r.Y)
					continue
				}
				out.StaticEntities = append(out.StaticEntities, StaticEntity{Kind: obj.Name, X: r.X, Y: r.Y})
			case "roaming":
				nb, ok := intProperty(obj.Properties, "nb")
				if !ok || nb <= 0 || obj.Name == "" {
					warn("roaming area %d: needs a mob name and a positive nb", obj.ID)
					continue
				}
				out.MobAreas = append(out.MobAreas, MobArea{ID: obj.ID, Mob: obj.Name, Count: nb, Rect: r})
			case "chestareas":
				cx, okX := intProperty(obj.Properties, "x")
				cy, okY := intProperty(obj.Properties, "y")
				items := listProperty(obj.Properties, "items")
				if !okX || !okY || len(items) == 0 {
					warn("chest area %d: needs x, y and items", obj.ID)
					continue
				}
				out.ChestAreas = append(out.ChestAreas, ChestArea{ID: obj.ID, Rect: r, ChestX: cx, ChestY: cy, Items: items})
			case "chests":
				items := listProperty(obj.Properties, "items")
				if len(items) == 0 {
					warn("chest %d at (%d,%d) has no items", obj.ID, r.X, r.Y)
					continue
				}
				out.StaticChests = append(out.StaticChests, StaticChest{X: r.X, Y: r.Y, Items: items})
			}
		}
	}
	return out, warnings
}

func (tm *TiledMap) tileRect(obj TiledObject) Rect {
	r := Rect{
		X: int(obj.X) / tm.TileWidth,
		Y: int(obj.Y) / tm.TileHeight,
		W: int(obj.Width) / tm.TileWidth,
		H: int(obj.Height) / tm.TileHeight,
	}
	if r.W < 1 {
		r.W = 1
	}
	if r.H < 1 {
		r.H = 1
	}
	return r
}

// collisionGrid marks every blocking tile, indexed [y*width + x].
func collisionGrid(tm *TiledMap) []bool {
	colliding := make(map[uint32]bool)
	for _, ts := range tm.Tilesets {
		for _, t := range ts.Tiles {
			if v, ok := boolProperty(t.Properties, "c"); ok && v {
				colliding[uint32(ts.FirstGID+t.ID)] = true
			}
		}
	}

	grid := make([]bool, tm.Width*tm.Height)
	for _, layer := range tm.Layers {
		if layer.Type != "tilelayer" {
			continue
		}
		blocking := strings.EqualFold(layer.Name, "blocking")
		for i, gid := range layer.Data {
			if i >= len(grid) {
				break
			}
			gid &= gidMask
			if gid == 0 {
				continue
			}
			if blocking || colliding[gid] {
				grid[i] = true
			}
		}
	}
	return grid
}

// blockedRects compresses grid into rectangles: horizontal runs per row,
// merged downward while the run below has the same extent.
func blockedRects(grid []bool, width, height int) []Rect {
	var rects []Rect
	open := make(map[[2]int]int) // {x, w} -> index of the rect ending on the previous row
	for y := 0; y < height; y++ {
		next := make(map[[2]int]int)
		for x := 0; x < width; {
			if !grid[y*width+x] {
				x++
				continue
			}
			start := x
			for x < width && grid[y*width+x] {
				x++
			}
			key := [2]int{start, x - start}
			if idx, ok := open[key]; ok {
				rects[idx].H++
				next[key] = idx
				continue
			}
			rects = append(rects, Rect{X: start, Y: y, W: x - start, H: 1})
			next[key] = len(rects) - 1
		}
		open = next
	}
	return rects
}

// ---------------------------------------------------------------------------
// Property helpers
// ---------------------------------------------------------------------------

func property(props []TiledProperty, name string) (any, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

func intProperty(props []TiledProperty, name string) (int, bool) {
	v, ok := property(props, name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func boolProperty(props []TiledProperty, name string) (bool, bool) {
	v, ok := property(props, name)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	case float64:
		return b != 0, true
	}
	return false, false
}

// listProperty splits a comma separated string property.
func listProperty(props []TiledProperty, name string) []string {
	v, ok := property(props, name)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

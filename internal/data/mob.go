package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MobTemplate holds static data for a mob kind loaded from YAML.
type MobTemplate struct {
	Kind        int    `yaml:"kind"`
	Name        string `yaml:"name"`
	Level       int    `yaml:"level"`
	ArmorLevel  int    `yaml:"armor_level"`
	WeaponLevel int    `yaml:"weapon_level"`
	XP          int    `yaml:"xp"`
	Aggressive  bool   `yaml:"aggressive"`
	AggroRange  int    `yaml:"aggro_range"`
	Drops       []Drop `yaml:"drops"` // evaluated in file order
}

type mobListFile struct {
	Mobs []MobTemplate `yaml:"mobs"`
}

// MobTable holds all mob templates indexed by kind and name.
type MobTable struct {
	byKind map[int]*MobTemplate
	byName map[string]*MobTemplate
}

// LoadMobTable loads mob templates and their drop lists from a YAML file.
func LoadMobTable(path string) (*MobTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mob_list: %w", err)
	}
	return parseMobTable(raw)
}

func parseMobTable(raw []byte) (*MobTable, error) {
	var f mobListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mob_list: %w", err)
	}
	t := &MobTable{
		byKind: make(map[int]*MobTemplate, len(f.Mobs)),
		byName: make(map[string]*MobTemplate, len(f.Mobs)),
	}
	for i := range f.Mobs {
		m := &f.Mobs[i]
		if m.Level < 1 {
			m.Level = 1
		}
		if err := validateDrops(m.Drops); err != nil {
			return nil, fmt.Errorf("mob %q: %w", m.Name, err)
		}
		t.byKind[m.Kind] = m
		t.byName[m.Name] = m
	}
	return t, nil
}

// ResolveDrops binds every drop entry to an item kind. Unknown item names are
// a configuration error.
func (t *MobTable) ResolveDrops(items *ItemTable) error {
	for _, m := range t.byKind {
		for i := range m.Drops {
			it := items.ByName(m.Drops[i].Item)
			if it == nil {
				return fmt.Errorf("mob %q drops %q: %w", m.Name, m.Drops[i].Item, ErrUnknownKind)
			}
			m.Drops[i].Kind = it.Kind
		}
	}
	return nil
}

// Get returns a mob template by kind, or nil if not found.
func (t *MobTable) Get(kind int) *MobTemplate {
	return t.byKind[kind]
}

func (t *MobTable) ByName(name string) *MobTemplate {
	return t.byName[name]
}

// Count returns the number of loaded templates.
func (t *MobTable) Count() int {
	return len(t.byKind)
}

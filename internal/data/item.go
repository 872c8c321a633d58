package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemCategory decides what looting an item does.
type ItemCategory string

const (
	CategoryWeapon     ItemCategory = "weapon"
	CategoryArmor      ItemCategory = "armor"
	CategoryConsumable ItemCategory = "consumable"
	CategoryChest      ItemCategory = "chest"
)

// Consumable effects.
const (
	EffectHeal       = "heal"
	EffectInvincible = "invincible"
)

// ItemTemplate holds static data for an item kind loaded from YAML.
type ItemTemplate struct {
	Kind     int          `yaml:"kind"`
	Name     string       `yaml:"name"`
	Category ItemCategory `yaml:"category"`
	Level    int          `yaml:"level"`  // weapon/armor rank used by damage formulas
	Effect   string       `yaml:"effect"` // consumables only
	Amount   int          `yaml:"amount"` // heal points for EffectHeal
}

func (t *ItemTemplate) IsEquipment() bool {
	return t.Category == CategoryWeapon || t.Category == CategoryArmor
}

type itemListFile struct {
	Items []ItemTemplate `yaml:"items"`
}

// ItemTable holds all item templates indexed by kind and name.
type ItemTable struct {
	byKind map[int]*ItemTemplate
	byName map[string]*ItemTemplate
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_list: %w", err)
	}
	return parseItemTable(raw)
}

func parseItemTable(raw []byte) (*ItemTable, error) {
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_list: %w", err)
	}
	t := &ItemTable{
		byKind: make(map[int]*ItemTemplate, len(f.Items)),
		byName: make(map[string]*ItemTemplate, len(f.Items)),
	}
	for i := range f.Items {
		it := &f.Items[i]
		switch it.Category {
		case CategoryWeapon, CategoryArmor, CategoryConsumable, CategoryChest:
		default:
			return nil, fmt.Errorf("item %q: unknown category %q", it.Name, it.Category)
		}
		if _, dup := t.byKind[it.Kind]; dup {
			return nil, fmt.Errorf("item %q: duplicate kind %d", it.Name, it.Kind)
		}
		t.byKind[it.Kind] = it
		t.byName[it.Name] = it
	}
	return t, nil
}

// Get returns an item template by kind, or nil if not found.
func (t *ItemTable) Get(kind int) *ItemTemplate {
	return t.byKind[kind]
}

// ByName returns an item template by name, or nil if not found.
func (t *ItemTable) ByName(name string) *ItemTemplate {
	return t.byName[name]
}

// Level returns the equipment rank of kind, 1 for unknown or non-equipment kinds.
func (t *ItemTable) Level(kind int) int {
	if it := t.byKind[kind]; it != nil && it.Level > 0 {
		return it.Level
	}
	return 1
}

// Count returns the number of loaded templates.
func (t *ItemTable) Count() int {
	return len(t.byKind)
}

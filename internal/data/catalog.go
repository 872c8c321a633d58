package data

import (
	"fmt"
	"path/filepath"
)

// EntityClass is the broad category a kind belongs to.
type EntityClass int

const (
	ClassUnknown EntityClass = iota
	ClassMob
	ClassNpc
	ClassItem
	ClassChest
)

func (c EntityClass) String() string {
	switch c {
	case ClassMob:
		return "mob"
	case ClassNpc:
		return "npc"
	case ClassItem:
		return "item"
	case ClassChest:
		return "chest"
	default:
		return "unknown"
	}
}

// Catalog groups the kind tables so map data can be resolved by name.
type Catalog struct {
	Mobs  *MobTable
	Items *ItemTable
	Npcs  *NpcTable
}

// LoadCatalog loads mob_list.yaml, item_list.yaml and npc_list.yaml from dir
// and resolves mob drop tables against the item table.
func LoadCatalog(dir string) (*Catalog, error) {
	items, err := LoadItemTable(filepath.Join(dir, "item_list.yaml"))
	if err != nil {
		return nil, err
	}
	mobs, err := LoadMobTable(filepath.Join(dir, "mob_list.yaml"))
	if err != nil {
		return nil, err
	}
	npcs, err := LoadNpcTable(filepath.Join(dir, "npc_list.yaml"))
	if err != nil {
		return nil, err
	}
	return NewCatalog(mobs, items, npcs)
}

// ParseCatalog builds a catalog from the raw YAML of the three kind lists.
func ParseCatalog(itemsYAML, mobsYAML, npcsYAML []byte) (*Catalog, error) {
	items, err := parseItemTable(itemsYAML)
	if err != nil {
		return nil, err
	}
	mobs, err := parseMobTable(mobsYAML)
	if err != nil {
		return nil, err
	}
	npcs, err := parseNpcTable(npcsYAML)
	if err != nil {
		return nil, err
	}
	return NewCatalog(mobs, items, npcs)
}

func NewCatalog(mobs *MobTable, items *ItemTable, npcs *NpcTable) (*Catalog, error) {
	if err := mobs.ResolveDrops(items); err != nil {
		return nil, err
	}
	return &Catalog{Mobs: mobs, Items: items, Npcs: npcs}, nil
}

// Resolve maps a kind name to its kind number and class.
func (c *Catalog) Resolve(name string) (int, EntityClass, error) {
	if m := c.Mobs.ByName(name); m != nil {
		return m.Kind, ClassMob, nil
	}
	if n := c.Npcs.ByName(name); n != nil {
		return n.Kind, ClassNpc, nil
	}
	if it := c.Items.ByName(name); it != nil {
		if it.Category == CategoryChest {
			return it.Kind, ClassChest, nil
		}
		return it.Kind, ClassItem, nil
	}
	return 0, ClassUnknown, fmt.Errorf("%q: %w", name, ErrUnknownKind)
}

// Class reports the class of a kind number.
func (c *Catalog) Class(kind int) EntityClass {
	if c.Mobs.Get(kind) != nil {
		return ClassMob
	}
	if c.Npcs.Get(kind) != nil {
		return ClassNpc
	}
	if it := c.Items.Get(kind); it != nil {
		if it.Category == CategoryChest {
			return ClassChest
		}
		return ClassItem
	}
	return ClassUnknown
}

// ChestKind returns the kind used for chests.
func (c *Catalog) ChestKind() (int, error) {
	for _, it := range c.Items.byKind {
		if it.Category == CategoryChest {
			return it.Kind, nil
		}
	}
	return 0, fmt.Errorf("no chest item defined: %w", ErrUnknownKind)
}

package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcTemplate is a non-combat character kind.
type NpcTemplate struct {
	Kind int    `yaml:"kind"`
	Name string `yaml:"name"`
}

type npcListFile struct {
	Npcs []NpcTemplate `yaml:"npcs"`
}

type NpcTable struct {
	byKind map[int]*NpcTemplate
	byName map[string]*NpcTemplate
}

// LoadNpcTable loads NPC templates from a YAML file.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc_list: %w", err)
	}
	return parseNpcTable(raw)
}

func parseNpcTable(raw []byte) (*NpcTable, error) {
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc_list: %w", err)
	}
	t := &NpcTable{
		byKind: make(map[int]*NpcTemplate, len(f.Npcs)),
		byName: make(map[string]*NpcTemplate, len(f.Npcs)),
	}
	for i := range f.Npcs {
		n := &f.Npcs[i]
		t.byKind[n.Kind] = n
		t.byName[n.Name] = n
	}
	return t, nil
}

func (t *NpcTable) Get(kind int) *NpcTemplate {
	return t.byKind[kind]
}

func (t *NpcTable) ByName(name string) *NpcTemplate {
	return t.byName[name]
}

func (t *NpcTable) Count() int {
	return len(t.byKind)
}

package world

import (
	"strconv"

	"go.uber.org/zap"
)

// Registry is the single index of live entities.
// Accessed only from the game loop goroutine.
type Registry struct {
	all      map[string]*Entity
	byType   map[Type]*IDSet
	counters map[string]int // per id prefix
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		all:      make(map[string]*Entity),
		byType:   make(map[Type]*IDSet),
		counters: make(map[string]int),
		log:      log,
	}
}

// NextID allocates a fresh id in t's namespace.
func (r *Registry) NextID(t Type) string {
	p := t.idPrefix()
	r.counters[p]++
	return p + strconv.Itoa(r.counters[p])
}

// Add indexes e. Adding an id twice replaces nothing and reports false.
func (r *Registry) Add(e *Entity) bool {
	if _, ok := r.all[e.ID]; ok {
		r.log.Warn("entity already registered", zap.String("id", e.ID))
		return false
	}
	r.all[e.ID] = e
	set := r.byType[e.Type]
	if set == nil {
		set = &IDSet{}
		r.byType[e.Type] = set
	}
	set.Add(e.ID)
	return true
}

// Remove drops id from every index. Unknown ids are a no-op.
func (r *Registry) Remove(id string) *Entity {
	e, ok := r.all[id]
	if !ok {
		r.log.Debug("remove of unknown entity", zap.String("id", id))
		return nil
	}
	delete(r.all, id)
	if set := r.byType[e.Type]; set != nil {
		set.Remove(id)
	}
	return e
}

// Get returns nil for unknown ids.
func (r *Registry) Get(id string) *Entity {
	return r.all[id]
}

// Character returns the live character with the given id, or nil.
func (r *Registry) Character(id string) *Entity {
	e := r.all[id]
	if e == nil || e.Char == nil {
		return nil
	}
	return e
}

func (r *Registry) Count(t Type) int {
	if set := r.byType[t]; set != nil {
		return set.Len()
	}
	return 0
}

func (r *Registry) Len() int {
	return len(r.all)
}

// Each visits entities of type t in insertion order. Entities removed during
// the walk are skipped.
func (r *Registry) Each(t Type, fn func(*Entity)) {
	set := r.byType[t]
	if set == nil {
		return
	}
	for _, id := range set.IDs() {
		if e, ok := r.all[id]; ok {
			fn(e)
		}
	}
}

func (r *Registry) Players(fn func(*Entity)) { r.Each(TypePlayer, fn) }
func (r *Registry) Mobs(fn func(*Entity))    { r.Each(TypeMob, fn) }
func (r *Registry) Npcs(fn func(*Entity))    { r.Each(TypeNpc, fn) }

// Items visits items and chests.
func (r *Registry) Items(fn func(*Entity)) {
	r.Each(TypeItem, fn)
	r.Each(TypeChest, fn)
}

// PlayerByName finds an in-world player by display name.
func (r *Registry) PlayerByName(name string) *Entity {
	var found *Entity
	r.Players(func(e *Entity) {
		if found == nil && e.Player.Name == name {
			found = e
		}
	})
	return found
}

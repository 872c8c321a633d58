package system

import (
	"errors"
	"fmt"

	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/world"
	"go.uber.org/zap"
)

// ErrNoRoom is returned when an area has no free tile left for a spawn.
var ErrNoRoom = errors.New("no free position")

// SpawnSource lists what the map places at start.
type SpawnSource interface {
	StaticEntities() []data.StaticEntity
	MobAreas() []data.MobArea
	ChestAreas() []data.ChestArea
	StaticChests() []data.StaticChest
}

// mobRecord remembers how to bring a mob back after it dies.
type mobRecord struct {
	spec   world.MobSpec
	x, y   int
	area   *world.Area
	roams  bool // respawns at a random spot in its area
	static bool
}

// SpawnManager populates the world and runs every respawn and
// blink-then-despawn clock.
type SpawnManager struct {
	w   *world.World
	cat *data.Catalog
	src SpawnSource
	cfg config.WorldConfig
	log *zap.Logger

	chestKind  int
	mobAreas   []*world.Area
	chestAreas []*world.Area
	mobs       map[string]*mobRecord
}

func NewSpawnManager(w *world.World, cat *data.Catalog, src SpawnSource, cfg config.WorldConfig, log *zap.Logger) *SpawnManager {
	s := &SpawnManager{
		w:    w,
		cat:  cat,
		src:  src,
		cfg:  cfg,
		log:  log,
		mobs: make(map[string]*mobRecord),
	}
	event.Subscribe(w.Bus, s.onMobKilled)
	return s
}

// Start places every static entity and fills every area. Errors here are
// configuration errors and abort startup.
func (s *SpawnManager) Start() error {
	if len(s.src.ChestAreas()) > 0 || len(s.src.StaticChests()) > 0 {
		kind, err := s.cat.ChestKind()
		if err != nil {
			return err
		}
		s.chestKind = kind
	}

	for _, ca := range s.src.ChestAreas() {
		s.chestAreas = append(s.chestAreas, &world.Area{
			ID:     ca.ID,
			Kind:   world.AreaChest,
			Bounds: ca.Rect,
			ChestX: ca.ChestX,
			ChestY: ca.ChestY,
			Items:  ca.ItemKinds,
		})
	}

	for _, se := range s.src.StaticEntities() {
		if err := s.spawnStatic(se); err != nil {
			return fmt.Errorf("static %s at (%d,%d): %w", se.Name, se.X, se.Y, err)
		}
	}
	for _, sc := range s.src.StaticChests() {
		chest := world.NewChest(s.w.Entities.NextID(world.TypeChest), s.chestKind, sc.X, sc.Y, sc.ItemKinds)
		chest.Item.Static = true
		s.w.AddEntity(chest)
	}

	// A chest area pays out once everything standing in it at start is dead.
	for _, a := range s.chestAreas {
		a.Count = a.Len()
		a.Respawned = a.Count > 0
	}

	for _, ma := range s.src.MobAreas() {
		if err := s.populateArea(ma); err != nil {
			return fmt.Errorf("mob area %d: %w", ma.ID, err)
		}
	}

	s.log.Info("world populated",
		zap.Int("mobs", s.w.Entities.Count(world.TypeMob)),
		zap.Int("npcs", s.w.Entities.Count(world.TypeNpc)),
		zap.Int("items", s.w.Entities.Count(world.TypeItem)),
		zap.Int("chests", s.w.Entities.Count(world.TypeChest)),
		zap.Int("mob_areas", len(s.mobAreas)),
		zap.Int("chest_areas", len(s.chestAreas)))
	return nil
}

func (s *SpawnManager) spawnStatic(se data.StaticEntity) error {
	switch se.Class {
	case data.ClassNpc:
		s.w.AddEntity(world.NewNpc(s.w.Entities.NextID(world.TypeNpc), se.Kind, se.X, se.Y))
	case data.ClassItem:
		item := world.NewItem(s.w.Entities.NextID(world.TypeItem), se.Kind, se.X, se.Y)
		item.Item.Static = true
		s.w.AddEntity(item)
	case data.ClassChest:
		chest := world.NewChest(s.w.Entities.NextID(world.TypeChest), se.Kind, se.X, se.Y, nil)
		chest.Item.Static = true
		s.w.AddEntity(chest)
	case data.ClassMob:
		spec, err := s.mobSpec(se.Kind)
		if err != nil {
			return err
		}
		rec := &mobRecord{spec: spec, x: se.X, y: se.Y, static: true}
		for _, a := range s.chestAreas {
			if a.Contains(se.X, se.Y) {
				rec.area = a
				break
			}
		}
		s.spawnMob(s.w.Entities.NextID(world.TypeMob), rec, se.X, se.Y)
	default:
		return fmt.Errorf("class %s: %w", se.Class, data.ErrUnknownKind)
	}
	return nil
}

func (s *SpawnManager) populateArea(ma data.MobArea) error {
	spec, err := s.mobSpec(ma.Kind)
	if err != nil {
		return err
	}
	area := &world.Area{
		ID:      ma.ID,
		Kind:    world.AreaMob,
		Bounds:  ma.Rect,
		Count:   ma.Count,
		MobKind: ma.Kind,
	}
	s.mobAreas = append(s.mobAreas, area)
	for i := 0; i < ma.Count; i++ {
		x, y, ok := area.RandomPosition(s.w.Rng, s.w.IsFree)
		if !ok {
			return fmt.Errorf("mob %d of %d: %w", i+1, ma.Count, ErrNoRoom)
		}
		rec := &mobRecord{spec: spec, area: area, roams: true}
		s.spawnMob(s.w.Entities.NextID(world.TypeMob), rec, x, y)
	}
	return nil
}

func (s *SpawnManager) mobSpec(kind int) (world.MobSpec, error) {
	t := s.cat.Mobs.Get(kind)
	if t == nil {
		return world.MobSpec{}, fmt.Errorf("mob kind %d: %w", kind, data.ErrUnknownKind)
	}
	return world.MobSpec{
		Kind:        t.Kind,
		Level:       t.Level,
		ArmorLevel:  t.ArmorLevel,
		WeaponLevel: t.WeaponLevel,
		XP:          t.XP,
		Aggressive:  t.Aggressive,
		AggroRange:  t.AggroRange,
	}, nil
}

func (s *SpawnManager) spawnMob(id string, rec *mobRecord, x, y int) *world.Entity {
	mob := world.NewMob(id, rec.spec, x, y)
	if !s.w.AddEntity(mob) {
		s.log.Warn("mob id already taken", zap.String("id", id))
		return nil
	}
	if rec.area != nil {
		rec.area.Add(mob)
	}
	if !rec.roams {
		rec.x, rec.y = x, y
	}
	s.mobs[id] = rec
	return mob
}

func (s *SpawnManager) onMobKilled(ev event.MobKilled) {
	rec, ok := s.mobs[ev.MobID]
	if !ok {
		return
	}
	if rec.area != nil && rec.area.Remove(ev.MobID) {
		s.onAreaEmpty(rec.area)
	}
	id := ev.MobID
	s.w.Timers.Schedule(s.cfg.MobRespawnDelay, func() { s.respawnMob(id) })
}

func (s *SpawnManager) respawnMob(id string) {
	rec, ok := s.mobs[id]
	if !ok || s.w.Entities.Get(id) != nil {
		return
	}
	x, y := rec.x, rec.y
	if rec.roams {
		var free bool
		x, y, free = rec.area.RandomPosition(s.w.Rng, s.w.IsFree)
		if !free {
			// Try again later rather than stacking mobs.
			s.w.Timers.Schedule(s.cfg.MobRespawnDelay, func() { s.respawnMob(id) })
			return
		}
	}
	if mob := s.spawnMob(id, rec, x, y); mob != nil {
		event.Publish(s.w.Bus, event.EntityRespawned{EntityID: id, Kind: mob.Kind})
	}
}

func (s *SpawnManager) onAreaEmpty(a *world.Area) {
	event.Publish(s.w.Bus, event.AreaEmpty{AreaID: a.ID, Chest: a.Kind == world.AreaChest})
	if a.Kind != world.AreaChest {
		return
	}
	chest := world.NewChest(s.w.Entities.NextID(world.TypeChest), s.chestKind, a.ChestX, a.ChestY, a.Items)
	if !s.w.AddEntity(chest) {
		return
	}
	s.ScheduleItemDespawn(chest)
	s.log.Debug("chest area paid out", zap.Int("area", a.ID), zap.String("chest", chest.ID))
}

// SpawnDrop places a loot item dropped by a kill. It goes out through DROP,
// not SPAWN.
func (s *SpawnManager) SpawnDrop(x, y, kind int) *world.Entity {
	item := world.NewItem(s.w.Entities.NextID(world.TypeItem), kind, x, y)
	if !s.w.AddEntity(item) {
		return nil
	}
	s.ScheduleItemDespawn(item)
	return item
}

// ScheduleItemDespawn starts e's blink-then-despawn clock. BLINK is sent
// once after the blink delay and the entity despawns after the blinking
// duration.
func (s *SpawnManager) ScheduleItemDespawn(e *world.Entity) {
	if e.Item == nil {
		return
	}
	s.cancelItemTasks(e)
	id := e.ID
	e.Item.BlinkTask = s.w.Timers.Schedule(s.cfg.BeforeBlinkDelay, func() {
		cur := s.w.Entities.Get(id)
		if cur != e {
			return
		}
		e.Item.BlinkTask = 0
		e.Item.Blinking = true
		s.w.Out.PushToAdjacentGroups(e.Group, packet.Blink(e.ID), "")
		e.Item.DespawnTask = s.w.Timers.Schedule(s.cfg.BlinkingDuration, func() {
			e.Item.DespawnTask = 0
			if s.w.Entities.Get(id) == e {
				s.w.Despawn(e)
			}
		})
	})
}

func (s *SpawnManager) cancelItemTasks(e *world.Entity) {
	if e.Item.BlinkTask != 0 {
		s.w.Timers.Cancel(e.Item.BlinkTask)
		e.Item.BlinkTask = 0
	}
	if e.Item.DespawnTask != 0 {
		s.w.Timers.Cancel(e.Item.DespawnTask)
		e.Item.DespawnTask = 0
	}
}

// TakeItem removes a looted item from the map. Static items come back in
// place after the static respawn delay.
func (s *SpawnManager) TakeItem(item *world.Entity) {
	if item.Item == nil {
		return
	}
	s.cancelItemTasks(item)
	s.w.Despawn(item)
	if item.Item.Static {
		s.scheduleStaticRespawn(item)
	}
}

// OpenChest despawns chest and leaves one random item of its contents in
// its place. The item is announced through SPAWN.
func (s *SpawnManager) OpenChest(chest *world.Entity) *world.Entity {
	if chest.Type != world.TypeChest || s.w.Entities.Get(chest.ID) != chest {
		return nil
	}
	s.cancelItemTasks(chest)
	s.w.Despawn(chest)
	if chest.Item.Static {
		s.scheduleStaticRespawn(chest)
	}
	if len(chest.Item.Contents) == 0 {
		return nil
	}
	kind := chest.Item.Contents[s.w.Rng.Intn(len(chest.Item.Contents))]
	item := world.NewItem(s.w.Entities.NextID(world.TypeItem), kind, chest.X, chest.Y)
	item.Item.FromChest = true
	if !s.w.AddEntity(item) {
		return nil
	}
	s.ScheduleItemDespawn(item)
	return item
}

func (s *SpawnManager) scheduleStaticRespawn(e *world.Entity) {
	s.w.Timers.Schedule(s.cfg.StaticRespawnDelay, func() {
		if s.w.Entities.Get(e.ID) != nil {
			return
		}
		var back *world.Entity
		if e.Type == world.TypeChest {
			back = world.NewChest(e.ID, e.Kind, e.X, e.Y, e.Item.Contents)
		} else {
			back = world.NewItem(e.ID, e.Kind, e.X, e.Y)
		}
		back.Item.Static = true
		if s.w.AddEntity(back) {
			event.Publish(s.w.Bus, event.EntityRespawned{EntityID: back.ID, Kind: back.Kind})
		}
	})
}

// Areas returns the mob areas and chest areas built by Start.
func (s *SpawnManager) Areas() (mobs, chests []*world.Area) {
	return s.mobAreas, s.chestAreas
}

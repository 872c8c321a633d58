package event

// Ids are carried as plain strings so this package stays a leaf.

type PlayerEntered struct {
	PlayerID string
	Name     string
}

type PlayerExited struct {
	PlayerID string
	Name     string
}

// EntityMoved fires after a position change has been applied.
type EntityMoved struct {
	EntityID string
	X, Y     int
}

// ZoneChanged fires when an entity's zone group changes. From is empty on
// first placement.
type ZoneChanged struct {
	EntityID string
	From, To string
}

type MobAggro struct {
	MobID    string
	PlayerID string
}

type MobKilled struct {
	MobID    string
	Kind     int
	KillerID string
}

type PlayerDied struct {
	PlayerID   string
	Name       string
	AttackerID string
}

// AreaEmpty fires when the last mob owned by an area is removed.
type AreaEmpty struct {
	AreaID int
	Chest  bool
}

type EntityRespawned struct {
	EntityID string
	Kind     int
}

package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no character has the requested name.
var ErrNotFound = errors.New("character not found")

// CharacterRecord is the persisted part of a player.
// X and Y are -1 when the character has never been placed.
type CharacterRecord struct {
	ID       int64
	Name     string
	Level    int
	XP       int
	HP       int
	Armor    int
	Weapon   int
	X        int
	Y        int
	Kills    int
	LastSeen time.Time
}

type CharacterRepo struct {
	db              *DB
	bcryptCost      int
	requirePassword bool
}

func NewCharacterRepo(db *DB, bcryptCost int, requirePassword bool) *CharacterRepo {
	return &CharacterRepo{db: db, bcryptCost: bcryptCost, requirePassword: requirePassword}
}

func (r *CharacterRepo) loadByName(ctx context.Context, name string) (*CharacterRecord, string, error) {
	c := &CharacterRecord{}
	var hash string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, password_hash, level, xp, hp, armor, weapon, x, y, kills, last_seen
		 FROM characters WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &hash, &c.Level, &c.XP, &c.HP, &c.Armor, &c.Weapon, &c.X, &c.Y, &c.Kills, &c.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("load character %s: %w", name, err)
	}
	return c, hash, nil
}

func (r *CharacterRepo) create(ctx context.Context, name, password string) (*CharacterRecord, error) {
	hash := ""
	if password != "" {
		var err error
		if hash, err = hashPassword(password, r.bcryptCost); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	c := &CharacterRecord{Name: name, Level: 1, Armor: 21, Weapon: 60, X: -1, Y: -1, LastSeen: time.Now()}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (name, password_hash, level, armor, weapon, x, y, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		c.Name, hash, c.Level, c.Armor, c.Weapon, c.X, c.Y, c.LastSeen,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("create character %s: %w", name, err)
	}
	return c, nil
}

// LoadCharacter returns the character called name, creating it on first
// use. A character created with a password must be claimed with it.
func (r *CharacterRepo) LoadCharacter(ctx context.Context, name, password string) (*CharacterRecord, error) {
	c, hash, err := r.loadByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		if r.requirePassword && password == "" {
			return nil, ErrBadPassword
		}
		return r.create(ctx, name, password)
	}
	if err != nil {
		return nil, err
	}
	if hash != "" && !checkPassword(hash, password) {
		return nil, ErrBadPassword
	}
	return c, nil
}

// SaveCharacter updates every mutable field of c.
func (r *CharacterRepo) SaveCharacter(ctx context.Context, c CharacterRecord) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET
			level = $1, xp = $2, hp = $3, armor = $4, weapon = $5,
			x = $6, y = $7, kills = $8, last_seen = now()
		WHERE id = $9`,
		c.Level, c.XP, c.HP, c.Armor, c.Weapon, c.X, c.Y, c.Kills, c.ID,
	)
	if err != nil {
		return fmt.Errorf("save character %s: %w", c.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save character %s: %w", c.Name, ErrNotFound)
	}
	return nil
}

package world

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/l1jgo/bqworld/internal/core/event"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

// gridMap is a MapService over a plain grid of zw×zh zones.
type gridMap struct {
	w, h, zw, zh int
	blocked      map[[2]int]bool
}

func (m *gridMap) GroupIDFor(x, y int) string {
	if m.IsOutOfBounds(x, y) {
		return ""
	}
	return fmt.Sprintf("%d-%d", x/m.zw, y/m.zh)
}

func (m *gridMap) AdjacentGroups(id string) []string {
	var gx, gy int
	if _, err := fmt.Sscanf(id, "%d-%d", &gx, &gy); err != nil {
		return nil
	}
	cols, rows := m.w/m.zw, m.h/m.zh
	if gx < 0 || gy < 0 || gx >= cols || gy >= rows {
		return nil
	}
	var out []string
	for y := gy - 1; y <= gy+1; y++ {
		for x := gx - 1; x <= gx+1; x++ {
			if x >= 0 && y >= 0 && x < cols && y < rows {
				out = append(out, fmt.Sprintf("%d-%d", x, y))
			}
		}
	}
	return out
}

func (m *gridMap) Groups() []string {
	var out []string
	for y := 0; y < m.h/m.zh; y++ {
		for x := 0; x < m.w/m.zw; x++ {
			out = append(out, fmt.Sprintf("%d-%d", x, y))
		}
	}
	return out
}

func (m *gridMap) IsBlocked(x, y int) bool {
	return m.IsOutOfBounds(x, y) || m.blocked[[2]int{x, y}]
}

func (m *gridMap) IsOutOfBounds(x, y int) bool {
	return x < 0 || y < 0 || x >= m.w || y >= m.h
}

func (m *gridMap) RandomStartingPosition(rng *rand.Rand) (int, int) {
	return rng.Intn(m.w), rng.Intn(m.h)
}

// fakeConn records every batch it is handed.
type fakeConn struct {
	batches [][]packet.Message
	err     error
}

func (c *fakeConn) Send(batch []packet.Message) error {
	if c.err != nil {
		return c.err
	}
	c.batches = append(c.batches, batch)
	return nil
}

func (c *fakeConn) all() []packet.Message {
	var out []packet.Message
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func (c *fakeConn) count(op int) int {
	n := 0
	for _, m := range c.all() {
		if m.Opcode() == op {
			n++
		}
	}
	return n
}

func (c *fakeConn) reset() { c.batches = nil }

var errBroken = errors.New("broken pipe")

// rowWorld is five 10×10 zones in a single row: 0-0 … 4-0.
func rowWorld(t *testing.T) *World {
	t.Helper()
	m := &gridMap{w: 50, h: 10, zw: 10, zh: 10}
	return New(1, m, event.NewBus(), rand.New(rand.NewSource(1)), zap.NewNop())
}

func addPlayer(t *testing.T, w *World, name string, x, y int) (*Entity, *fakeConn) {
	t.Helper()
	p := NewPlayer(w.Entities.NextID(TypePlayer), name, x, y, 1)
	conn := &fakeConn{}
	if !w.AddPlayer(p, conn) {
		t.Fatalf("AddPlayer(%s) failed", name)
	}
	return p, conn
}

func addMob(t *testing.T, w *World, x, y int) *Entity {
	t.Helper()
	m := NewMob(w.Entities.NextID(TypeMob), MobSpec{Kind: 2, Level: 1}, x, y)
	if !w.AddEntity(m) {
		t.Fatal("AddEntity(mob) failed")
	}
	return m
}

// settle delivers everything pending and forgets it.
func settle(w *World, conns ...*fakeConn) {
	w.Zones.FlushIncoming(w.Out)
	w.Out.FlushQueues()
	for _, c := range conns {
		c.reset()
	}
}

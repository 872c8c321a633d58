package world

import (
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
)

// Conn is the per-connection send primitive the transport provides.
type Conn interface {
	Send(batch []packet.Message) error
}

type outQueue struct {
	conn Conn
	msgs []packet.Message
}

// Broadcaster batches outgoing messages per player and hands each batch to
// the transport once per tick.
type Broadcaster struct {
	queues map[string]*outQueue
	order  []string
	zones  *ZoneManager
	log    *zap.Logger
}

func NewBroadcaster(zones *ZoneManager, log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		queues: make(map[string]*outQueue),
		zones:  zones,
		log:    log,
	}
}

// AddQueue binds playerID to conn. Binding an existing id replaces the conn.
func (b *Broadcaster) AddQueue(playerID string, conn Conn) {
	if q, ok := b.queues[playerID]; ok {
		q.conn = conn
		return
	}
	b.queues[playerID] = &outQueue{conn: conn}
	b.order = append(b.order, playerID)
}

// RemoveQueue sends whatever is still queued for playerID, then drops it.
func (b *Broadcaster) RemoveQueue(playerID string) {
	q, ok := b.queues[playerID]
	if !ok {
		return
	}
	b.flushOne(playerID, q)
	delete(b.queues, playerID)
	for i, id := range b.order {
		if id == playerID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Broadcaster) HasQueue(playerID string) bool {
	_, ok := b.queues[playerID]
	return ok
}

// Pending returns the messages currently queued for playerID.
func (b *Broadcaster) Pending(playerID string) []packet.Message {
	if q, ok := b.queues[playerID]; ok {
		return q.msgs
	}
	return nil
}

// Connected returns the number of players with a live queue.
func (b *Broadcaster) Connected() int {
	return len(b.queues)
}

func (b *Broadcaster) PushToPlayer(playerID string, msg packet.Message) {
	q, ok := b.queues[playerID]
	if !ok {
		b.log.Debug("push to player without queue",
			zap.String("player", playerID), zap.String("op", packet.OpName(msg.Opcode())))
		return
	}
	q.msgs = append(q.msgs, msg)
}

// PushToGroup queues msg for every player whose home group is groupID.
func (b *Broadcaster) PushToGroup(groupID string, msg packet.Message, except string) {
	g := b.zones.Group(groupID)
	if g == nil {
		b.log.Debug("push to unknown group", zap.String("group", groupID))
		return
	}
	for _, pid := range g.Players {
		if pid != except {
			b.PushToPlayer(pid, msg)
		}
	}
}

// PushToAdjacentGroups queues msg for the players of groupID and its
// neighbours.
func (b *Broadcaster) PushToAdjacentGroups(groupID string, msg packet.Message, except string) {
	if groupID == "" {
		return
	}
	adj := b.zones.Adjacent(groupID)
	if adj == nil {
		b.log.Debug("push to unknown group", zap.String("group", groupID))
		return
	}
	for _, gid := range adj {
		b.PushToGroup(gid, msg, except)
	}
}

// PushToPreviousGroups queues msg for the groups e just left, then forgets
// them.
func (b *Broadcaster) PushToPreviousGroups(e *Entity, msg packet.Message) {
	for _, gid := range e.RecentlyLeft {
		b.PushToGroup(gid, msg, e.ID)
	}
	e.RecentlyLeft = nil
}

// PushBroadcast queues msg for every connected player.
func (b *Broadcaster) PushBroadcast(msg packet.Message, except string) {
	for _, pid := range b.order {
		if pid != except {
			b.queues[pid].msgs = append(b.queues[pid].msgs, msg)
		}
	}
}

// FlushQueues hands every non-empty queue to its connection as one batch
// and returns the number of messages sent. A failing connection only loses
// its own batch.
func (b *Broadcaster) FlushQueues() int {
	total := 0
	for _, pid := range b.order {
		total += b.flushOne(pid, b.queues[pid])
	}
	return total
}

func (b *Broadcaster) flushOne(playerID string, q *outQueue) int {
	if len(q.msgs) == 0 {
		return 0
	}
	batch := q.msgs
	q.msgs = nil
	if err := q.conn.Send(batch); err != nil {
		b.log.Warn("flush failed", zap.String("player", playerID), zap.Int("messages", len(batch)), zap.Error(err))
		return 0
	}
	return len(batch)
}

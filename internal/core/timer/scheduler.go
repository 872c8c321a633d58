// Package timer runs delayed tasks on simulation time. The scheduler is
// advanced by the game loop, so every task body executes inside the tick
// that makes it due and never races world state.
package timer

import (
	"container/heap"
	"time"
)

// TaskID identifies a scheduled task. Zero is never issued.
type TaskID uint64

type task struct {
	id       TaskID
	due      time.Duration
	seq      uint64
	fn       func()
	canceled bool
	index    int
}

// Scheduler is a min-heap of pending tasks ordered by due time, ties broken
// by schedule order. Not safe for concurrent use.
type Scheduler struct {
	now    time.Duration
	nextID TaskID
	seq    uint64
	queue  taskHeap
	live   map[TaskID]*task
}

func New() *Scheduler {
	return &Scheduler{
		live: make(map[TaskID]*task),
	}
}

// Schedule runs fn once delay has elapsed. A non-positive delay makes the
// task due on the next Advance.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) TaskID {
	if delay < 0 {
		delay = 0
	}
	s.nextID++
	s.seq++
	t := &task{id: s.nextID, due: s.now + delay, seq: s.seq, fn: fn}
	heap.Push(&s.queue, t)
	s.live[t.id] = t
	return t.id
}

// Cancel stops a pending task. Returns false if the task already ran, was
// already canceled, or never existed.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.live[id]
	if !ok {
		return false
	}
	t.canceled = true
	delete(s.live, id)
	heap.Remove(&s.queue, t.index)
	return true
}

// Advance moves the clock forward by dt and runs every task that became due,
// in due order. Tasks scheduled by a running task with a delay that still
// falls inside this step also run. Returns the number of tasks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}
	ran := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.due > s.now {
			break
		}
		heap.Pop(&s.queue)
		delete(s.live, next.id)
		if next.canceled {
			continue
		}
		next.fn()
		ran++
	}
	return ran
}

// Pending reports how many tasks are still waiting.
func (s *Scheduler) Pending() int {
	return len(s.live)
}

// Scheduled reports whether id is still waiting to run.
func (s *Scheduler) Scheduled(id TaskID) bool {
	_, ok := s.live[id]
	return ok
}

// Now returns the simulation time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

package timer

import (
	"testing"
	"time"
)

func TestAdvanceRunsDueTasksInOrder(t *testing.T) {
	s := New()
	var got []string
	s.Schedule(30*time.Millisecond, func() { got = append(got, "c") })
	s.Schedule(10*time.Millisecond, func() { got = append(got, "a") })
	s.Schedule(10*time.Millisecond, func() { got = append(got, "b") })

	if n := s.Advance(5 * time.Millisecond); n != 0 {
		t.Fatalf("ran %d tasks before due", n)
	}
	if n := s.Advance(5 * time.Millisecond); n != 2 {
		t.Fatalf("ran %d tasks at 10ms, want 2", n)
	}
	s.Advance(20 * time.Millisecond)

	want := "abc"
	var joined string
	for _, g := range got {
		joined += g
	}
	if joined != want {
		t.Errorf("order = %q, want %q", joined, want)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestCancel(t *testing.T) {
	s := New()
	ran := false
	id := s.Schedule(time.Second, func() { ran = true })

	if !s.Scheduled(id) {
		t.Fatal("task should be scheduled")
	}
	if !s.Cancel(id) {
		t.Fatal("Cancel returned false for a pending task")
	}
	if s.Cancel(id) {
		t.Error("second Cancel should return false")
	}
	s.Advance(2 * time.Second)
	if ran {
		t.Error("canceled task ran")
	}
	if s.Cancel(TaskID(999)) {
		t.Error("Cancel of unknown id should return false")
	}
}

func TestCancelAfterRun(t *testing.T) {
	s := New()
	id := s.Schedule(0, func() {})
	s.Advance(0)
	if s.Cancel(id) {
		t.Error("Cancel after run should return false")
	}
}

func TestChainedTasks(t *testing.T) {
	s := New()
	var fired []time.Duration
	s.Schedule(10*time.Second, func() {
		fired = append(fired, s.Now())
		s.Schedule(4*time.Second, func() { fired = append(fired, s.Now()) })
	})

	for i := 0; i < 13; i++ {
		s.Advance(time.Second)
	}
	if len(fired) != 1 || fired[0] != 10*time.Second {
		t.Fatalf("fired = %v, want [10s]", fired)
	}
	s.Advance(time.Second)
	if len(fired) != 2 || fired[1] != 14*time.Second {
		t.Fatalf("fired = %v, want [10s 14s]", fired)
	}
}

func TestCancelFromInsideTask(t *testing.T) {
	s := New()
	ran := false
	var second TaskID
	s.Schedule(time.Second, func() { s.Cancel(second) })
	second = s.Schedule(time.Second, func() { ran = true })

	s.Advance(time.Second)
	if ran {
		t.Error("task canceled by an earlier task in the same step still ran")
	}
}

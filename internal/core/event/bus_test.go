package event

import "testing"

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(ev MobKilled) { got = append(got, "a:"+ev.MobID) })
	Subscribe(b, func(ev MobKilled) { got = append(got, "b:"+ev.MobID) })
	Subscribe(b, func(ev PlayerDied) { got = append(got, "died") })

	Publish(b, MobKilled{MobID: "71"})

	if len(got) != 2 || got[0] != "a:71" || got[1] != "b:71" {
		t.Fatalf("got %v, want [a:71 b:71]", got)
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	b := NewBus()
	seen := false
	Subscribe(b, func(AreaEmpty) { seen = true })
	Publish(b, AreaEmpty{AreaID: 3})
	if !seen {
		t.Fatal("handler did not run before Publish returned")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBus()
	Publish(b, EntityMoved{EntityID: "5"})
	Publish[EntityMoved](nil, EntityMoved{})
	if n := HandlerCount[EntityMoved](b); n != 0 {
		t.Errorf("HandlerCount = %d, want 0", n)
	}
}

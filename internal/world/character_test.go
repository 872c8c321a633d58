package world

import "testing"

func TestCharacterHPClamp(t *testing.T) {
	tests := []struct {
		name  string
		level int
		set   int
		want  int
	}{
		{"within range", 1, 40, 40},
		{"negative clamps to zero", 1, -25, 0},
		{"over max clamps", 1, 500, 100},
		{"level 5 max", 5, 1000, 180},
		{"level below one", 0, 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacter(tt.level)
			if c.HP() != c.MaxHP() {
				t.Fatalf("new character hp = %d, want full %d", c.HP(), c.MaxHP())
			}
			c.SetHP(tt.set)
			if c.HP() != tt.want {
				t.Errorf("hp = %d, want %d", c.HP(), tt.want)
			}
			if c.MaxHP() != 80+20*c.Level {
				t.Errorf("max hp = %d for level %d", c.MaxHP(), c.Level)
			}
		})
	}
}

func TestCharacterHealAndLevel(t *testing.T) {
	c := NewCharacter(1)
	c.SetHP(90)
	if got := c.Heal(25); got != 10 || !c.HasFullHealth() {
		t.Errorf("Heal gained %d, hp %d", got, c.HP())
	}
	c.SetLevel(2)
	if c.MaxHP() != 120 || c.HP() != 100 {
		t.Errorf("after level up: hp %d/%d", c.HP(), c.MaxHP())
	}
}

func TestHateListRanking(t *testing.T) {
	var h HateList
	h.Add("51", 5)
	h.Add("52", 10)
	h.Add("53", 10)
	h.Add("51", 2)

	got := h.Ranked()
	want := []string{"52", "53", "51"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Ranked() = %v, want %v", got, want)
		}
	}
	if h.Points("51") != 7 {
		t.Errorf("points = %d, want 7", h.Points("51"))
	}
	if !h.Remove("52") || h.Remove("52") {
		t.Error("Remove should succeed once")
	}
	if h.Len() != 2 {
		t.Errorf("len = %d", h.Len())
	}
}

func TestIDSetOrder(t *testing.T) {
	var s IDSet
	for _, id := range []string{"a", "b", "c", "b"} {
		s.Add(id)
	}
	s.Remove("a")
	s.Add("d")
	ids := s.IDs()
	if len(ids) != 3 || ids[0] != "b" || ids[1] != "c" || ids[2] != "d" {
		t.Errorf("IDs() = %v", ids)
	}
	if !s.Has("c") || s.Has("a") {
		t.Error("membership wrong")
	}
}

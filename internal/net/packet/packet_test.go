package packet

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func TestMessageShapes(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"despawn", Despawn("71"), `[3,"71"]`},
		{"move", Move("5", 3, 4), `[4,"5",3,4]`},
		{"attack", Attack("71", "5"), `[7,"71","5"]`},
		{"health", Health("5", 20, 100, false), `[10,"5",20,100]`},
		{"regen", Health("5", 24, 100, true), `[10,"5",24,100,1]`},
		{"damage", Damage("71", 12, "5"), `[16,"71",12,"5"]`},
		{"drop", Drop("71", "93", 35, []string{"5", "6"}, nil), `[14,"71","93",35,["5","6"],null]`},
		{"drop no haters", Drop("71", "93", 35, nil, &Position{X: 1, Y: 2}), `[14,"71","93",35,[],{"x":1,"y":2}]`},
		{"population", Population(1, 12), `[17,1,12]`},
		{"xp", XP(40, 100, 5), `[27,40,100,5]`},
		{"list", List([]string{"5", "71"}), `[19,"5","71"]`},
		{"chat", Chat("5", "hi", "say"), `[11,"5","hi","say"]`},
		{"spawn", Spawn([]any{"71", 2, 3, 4, 1}), `[2,"71",2,3,4,1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != tt.want {
				t.Errorf("got %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestEncodeBatch(t *testing.T) {
	raw, err := EncodeBatch([]Message{Despawn("1"), Blink("9")})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `[[3,"1"],[24,"9"]]` {
		t.Errorf("batch = %s", raw)
	}
}

func TestReader(t *testing.T) {
	r, err := Decode([]byte(`[4, 12, "7", "abc", 713]`))
	if err != nil {
		t.Fatal(err)
	}
	if r.Opcode() != OpMove {
		t.Fatalf("opcode = %d", r.Opcode())
	}
	if x := r.Int(); x != 12 {
		t.Errorf("x = %d", x)
	}
	if y := r.Int(); y != 7 {
		t.Errorf("y = %d (numeric strings accepted)", y)
	}
	if s := r.String(); s != "abc" {
		t.Errorf("s = %q", s)
	}
	if id := r.ID(); id != "713" {
		t.Errorf("id = %q", id)
	}
	if r.Err() != nil {
		t.Errorf("unexpected err %v", r.Err())
	}
	if r.Int() != 0 || r.Err() == nil {
		t.Error("reading past the end should yield zero and set Err")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, in := range []string{``, `{}`, `[]`, `["x"]`, `not json`} {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("Decode(%q) should fail", in)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var gotX int
	reg.Register(OpMove, []SessionState{StateInWorld}, func(_ any, r *Reader) {
		gotX = r.Int()
	})
	reg.Register(OpHit, []SessionState{StateInWorld}, func(any, *Reader) {
		panic("bad handler")
	})

	if err := reg.Dispatch(nil, StateInWorld, []byte(`[4,9,9]`)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gotX != 9 {
		t.Errorf("handler saw x=%d", gotX)
	}
	if err := reg.Dispatch(nil, StateConnected, []byte(`[4,1,1]`)); err == nil {
		t.Error("expected state error")
	}
	if err := reg.Dispatch(nil, StateInWorld, []byte(`[8,"71"]`)); err == nil {
		t.Error("expected panic to surface as error")
	}
	if err := reg.Dispatch(nil, StateInWorld, []byte(`[99]`)); err != nil {
		t.Errorf("unknown opcode should be ignored, got %v", err)
	}
}

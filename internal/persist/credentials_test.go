package persist

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in clear")
	}
	tests := []struct {
		raw  string
		want bool
	}{
		{"hunter2", true},
		{"hunter3", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := checkPassword(hash, tt.raw); got != tt.want {
			t.Errorf("checkPassword(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

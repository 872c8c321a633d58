package persist

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPassword is returned when a known character is claimed with the
// wrong password.
var ErrBadPassword = errors.New("bad password")

func hashPassword(raw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

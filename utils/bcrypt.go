package utils

import (
	"github.com/mmdatafocus/kvk_backend/config"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost reads BCRYPT_ROUNDS, clamped to the range bcrypt accepts.
func passwordCost() int {
	cost := config.IntFromEnv("BCRYPT_ROUNDS", bcrypt.DefaultCost)
	return min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
}

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), passwordCost())
}

// ComparePassword returns bcrypt.ErrMismatchedHashAndPassword for a wrong password.
func ComparePassword(hashed string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

// Package password wraps bcrypt for one-way password hashing.
package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of the plain-text password.
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// Check compares a bcrypt hash against the plain-text candidate.
func Check(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Package hash wraps bcrypt for password storage. The salt is embedded in the
// produced hash, so verification needs nothing besides the hash itself.
package hash

import "golang.org/x/crypto/bcrypt"

// Password hashes plaintext with bcrypt at the default cost (10).
func Password(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hashed. A mismatch is not an error.
func Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

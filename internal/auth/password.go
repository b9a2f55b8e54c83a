package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// BcryptHasher adapts the package functions to the domain.PasswordHasher interface.
type BcryptHasher struct{}

// Hash hashes a plaintext password.
func (BcryptHasher) Hash(password string) (string, error) { return HashPassword(password) }

// Verify reports whether the plaintext matches the stored hash.
func (BcryptHasher) Verify(password, hashed string) bool { return VerifyPassword(password, hashed) }

// Package password provides password hashing and strength evaluation.
//
// Hashing uses bcrypt with a fixed cost factor. Strength evaluation
// scores a password 0-100 from length and character-class diversity and
// validates it against a fixed rule set, including a denylist of common
// passwords.
package password

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt cost factor. Fixed so that hashes remain
// comparable in cost across deployments.
const hashCost = 10

// Hash returns the bcrypt digest of a plaintext password.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest. The
// comparison is constant-time by construction of bcrypt.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

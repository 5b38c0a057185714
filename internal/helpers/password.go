package helpers

import (
	"errors"

	"github.com/alexedwards/argon2id"
	"golang.org/x/text/unicode/norm"
)

// NormalizePassword applies Unicode NFKC normalization so that visually
// identical inputs with differing code-point sequences hash and verify the
// same way.
func NormalizePassword(password string) string {
	return norm.NFKC.String(password)
}

func CreateHash(password string) (string, error) {
	argonParams := argon2id.Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  32,
		KeyLength:   32,
	}
	hash, err := argon2id.CreateHash(NormalizePassword(password), &argonParams)
	if err != nil {
		return "", errors.New("can not create hash password")
	}

	return hash, nil
}

// ComparePassword verifies the supplied password against the stored hash,
// normalizing first.
func ComparePassword(password string, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(NormalizePassword(password), hash)
	return err == nil && match
}

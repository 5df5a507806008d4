// AngelaMos | 2026
// security.go

package core

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SecretCost is the bcrypt cost factor for admin passwords and user passkeys.
const SecretCost = 10

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

// ErrSecretTooLong is returned for secrets over MaxSecretBytes. It wraps
// ErrInvalidInput.
var ErrSecretTooLong = fmt.Errorf(
	"%w: secret exceeds %d bytes", ErrInvalidInput, MaxSecretBytes)

func HashSecret(secret string) (string, error) {
	if len(secret) > MaxSecretBytes {
		return "", fmt.Errorf("hash secret: %w", ErrSecretTooLong)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), SecretCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("hash secret: %w", ErrSecretTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether secret matches hash. A secret too long to
// have been hashed never matches.
func VerifySecret(secret, hash string) (bool, error) {
	if len(secret) > MaxSecretBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare secret: %w", err)
}

var dummyHash string

func init() {
	hash, err := bcrypt.GenerateFromPassword(
		[]byte("dummy_secret_for_timing_attack_prevention"),
		SecretCost,
	)
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = string(hash)
}

// VerifySecretTimingSafe compares against a dummy hash when the account is
// unknown so lookups for missing accounts cost the same as wrong secrets.
func VerifySecretTimingSafe(secret string, hash *string) (bool, error) {
	if hash == nil || *hash == "" {
		//nolint:errcheck // result discarded, comparison only burns time
		_, _ = VerifySecret(secret, dummyHash)
		return false, nil
	}
	return VerifySecret(secret, *hash)
}

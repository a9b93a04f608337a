package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size for both app and tenant keys.
	KeySize = 32 // 256 bits for AES-256

	// saltInfo provides domain separation for compound key derivation.
	saltInfo = "tenantkit-secrets-v1"

	// tenantKeyInfo provides domain separation for per-tenant key derivation.
	tenantKeyInfo = "tenantkit-tenant-key-v1"
)

// ValidateKeys checks that both keys are the correct length.
// Both lengths are checked before returning so the error path does not
// reveal which key failed first.
func ValidateKeys(appKey, tenantKey []byte) error {
	validApp := len(appKey) == KeySize
	validTenant := len(tenantKey) == KeySize

	if !validApp {
		return ErrInvalidAppKey
	}
	if !validTenant {
		return ErrInvalidTenantKey
	}
	return nil
}

// DeriveTenantKey derives a deterministic per-tenant key from the application
// key and a stable tenant identifier (typically the tenant UUID). The same
// inputs always yield the same key, so no per-tenant key material needs to be
// stored. Rotating the app key re-keys every tenant.
func DeriveTenantKey(appKey []byte, tenantID string) ([]byte, error) {
	if len(appKey) != KeySize {
		return nil, ErrInvalidAppKey
	}
	if tenantID == "" {
		return nil, errors.Join(ErrKeyDerivationFailed, errors.New("empty tenant id"))
	}

	hkdfReader := hkdf.New(sha256.New, appKey, []byte(tenantID), []byte(tenantKeyInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// deriveKey creates a compound key from app and tenant keys using HKDF.
// The caller must clear the returned key with clearBytes once it is no
// longer needed.
func deriveKey(appKey, tenantKey []byte) ([]byte, error) {
	hkdfReader := hkdf.New(sha256.New, appKey, tenantKey, []byte(saltInfo))

	derivedKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, derivedKey); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derivedKey, nil
}

// clearBytes zeros a byte slice so key material does not outlive its use.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a new random 32-byte key suitable for encryption.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

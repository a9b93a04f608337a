package secrets

import "errors"

var (
	// ErrInvalidAppKey reports an application root key that is not
	// exactly 32 bytes after decoding.
	ErrInvalidAppKey = errors.New("invalid app key: must be 32 bytes")

	// ErrInvalidTenantKey reports a derived tenant key of the wrong
	// size, which means the key material was corrupted in storage.
	ErrInvalidTenantKey = errors.New("invalid tenant key: must be 32 bytes")

	// ErrEncryptionFailed wraps AEAD seal failures.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed covers both tampered ciphertext and a key that
	// does not match the tenant the value was sealed for.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidCiphertext reports input too short to carry a nonce.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrKeyDerivationFailed wraps HKDF expansion failures.
	ErrKeyDerivationFailed = errors.New("key derivation failed")
)

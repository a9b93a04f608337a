package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// newAEAD validates the keys, derives the compound key, and builds the
// AES-GCM primitive both directions share. Cipher construction failures
// are wrapped with wrap; the derived key is wiped before returning.
func newAEAD(appKey, tenantKey []byte, wrap error) (cipher.AEAD, error) {
	if err := ValidateKeys(appKey, tenantKey); err != nil {
		return nil, err
	}

	key, err := deriveKey(appKey, tenantKey)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(wrap, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(wrap, err)
	}
	return gcm, nil
}

// EncryptString encrypts a string using a compound key derived from the app
// and tenant keys. Returns base64-encoded ciphertext.
func EncryptString(appKey, tenantKey []byte, plaintext string) (string, error) {
	ciphertext, err := EncryptBytes(appKey, tenantKey, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts a base64-encoded ciphertext back to a string.
func DecryptString(appKey, tenantKey []byte, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	plaintext, err := DecryptBytes(appKey, tenantKey, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptBytes encrypts raw bytes with AES-GCM under the compound key.
// The nonce is prepended so the ciphertext is self-contained.
func EncryptBytes(appKey, tenantKey, data []byte) ([]byte, error) {
	gcm, err := newAEAD(appKey, tenantKey, ErrEncryptionFailed)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes decrypts ciphertext produced by EncryptBytes. Tampered
// input and mismatched keys both surface as ErrDecryptionFailed.
func DecryptBytes(appKey, tenantKey, ciphertext []byte) ([]byte, error) {
	gcm, err := newAEAD(appKey, tenantKey, ErrDecryptionFailed)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Package secrets encrypts and decrypts per-tenant secret material, such as
// tenant settings stored in the registry.
//
// The package derives a compound 32-byte key from an application key and a
// tenant key using HKDF-SHA-256. The derived key is then used with AES-256
// in GCM mode to protect arbitrary byte slices or UTF-8 strings. On
// successful encryption the nonce is prepended to the ciphertext so that the
// result is self-contained.
//
// Tenant keys do not need to be stored: DeriveTenantKey deterministically
// derives one from the app key and a stable tenant identifier (the tenant
// UUID). A ciphertext produced for one tenant cannot be decrypted with
// another tenant's key, and rotating the app key re-keys every tenant.
//
// # Usage
//
//	import "github.com/dmitrymomot/tenantkit/pkg/secrets"
//
//	// The app key is generated once and stored securely.
//	appKey, _ := secrets.GenerateKey()
//
//	tenantKey, err := secrets.DeriveTenantKey(appKey, tenantID)
//	if err != nil {
//	    // handle error
//	}
//
//	ct, err := secrets.EncryptString(appKey, tenantKey, `{"webhook_secret":"whsec_123"}`)
//	if err != nil {
//	    // handle error
//	}
//
//	plain, err := secrets.DecryptString(appKey, tenantKey, ct)
//	if err != nil {
//	    // handle error
//	}
//
// # Error Handling
//
// All public functions return errors that wrap a sentinel package error such
// as ErrEncryptionFailed or ErrInvalidCiphertext. Use errors.Is to match
// against these sentinels.
package secrets

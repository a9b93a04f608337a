package registry

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/secrets"
)

// settingsEnvelope is the stored form of an encrypted settings document.
// The envelope replaces the document wholesale, so the reserved $cipher
// key never mixes with tenant-provided settings keys.
type settingsEnvelope struct {
	Cipher string `json:"$cipher"`
}

// encryptSettings prepares a settings document for storage. Without a
// configured key the document is stored as-is. The ciphertext is wrapped
// in a JSON envelope so the column stays valid jsonb and rows written
// before encryption was enabled remain readable.
func encryptSettings(appKey []byte, tenantID uuid.UUID, settings []byte) ([]byte, error) {
	if len(settings) == 0 || len(appKey) == 0 {
		return settings, nil
	}

	tenantKey, err := secrets.DeriveTenantKey(appKey, tenantID.String())
	if err != nil {
		return nil, errors.Join(ErrSettingsEncryption, err)
	}

	ct, err := secrets.EncryptString(appKey, tenantKey, string(settings))
	if err != nil {
		return nil, errors.Join(ErrSettingsEncryption, err)
	}

	stored, err := json.Marshal(settingsEnvelope{Cipher: ct})
	if err != nil {
		return nil, errors.Join(ErrSettingsEncryption, err)
	}
	return stored, nil
}

// decryptSettings restores a settings document read from storage.
// Documents without a $cipher envelope pass through unchanged; an
// envelope with no configured key is an error rather than silently
// handing ciphertext to the caller.
func decryptSettings(appKey []byte, tenantID uuid.UUID, stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return stored, nil
	}

	var env settingsEnvelope
	if err := json.Unmarshal(stored, &env); err != nil || env.Cipher == "" {
		return stored, nil
	}

	if len(appKey) == 0 {
		return nil, errors.Join(ErrSettingsDecryption,
			errors.New("settings are encrypted but no settings key is configured"))
	}

	tenantKey, err := secrets.DeriveTenantKey(appKey, tenantID.String())
	if err != nil {
		return nil, errors.Join(ErrSettingsDecryption, err)
	}

	plain, err := secrets.DecryptString(appKey, tenantKey, env.Cipher)
	if err != nil {
		return nil, errors.Join(ErrSettingsDecryption, err)
	}
	return []byte(plain), nil
}

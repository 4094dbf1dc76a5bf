// Package keybackend resolves the access keys allowed to presign gateway URLs.
package keybackend

import (
	"fmt"
	"slices"

	"github.com/sagarc03/swiftgate"
)

var _ swiftgate.KeyStore = (*MapSecretStore)(nil)

// MapSecretStore resolves secret keys from an in-memory map. The map is copied
// on construction, so a store is safe for concurrent lookups.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a store from an access key to secret key mapping.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	return &MapSecretStore{keys: copied}
}

// Lookup returns the secret key of accessKey. An unknown key wraps both
// ErrKeyNotFound and swiftgate.ErrUnauthorized.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("%w: %w", ErrKeyNotFound, swiftgate.ErrUnauthorized)
	}
	return secretKey, nil
}

// Len returns the number of known access keys.
func (s *MapSecretStore) Len() int {
	return len(s.keys)
}

// AccessKeys returns the known access keys in sorted order.
func (s *MapSecretStore) AccessKeys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

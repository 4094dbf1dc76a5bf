package keybackend

import "fmt"

// KeysConfig lists where access keys come from.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to a JSON or YAML key file
}

// NewSecretStore builds a store from inline pairs and the key file. File keys
// take precedence over inline keys with the same access key.
func NewSecretStore(cfg KeysConfig) (*MapSecretStore, error) {
	keys := make(map[string]string, len(cfg.Inline))

	for i, p := range cfg.Inline {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("inline key %d: %w", i, err)
		}
		keys[p.AccessKey] = p.SecretKey
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileKeys {
			keys[k] = v
		}
	}

	return NewMapSecretStore(keys), nil
}

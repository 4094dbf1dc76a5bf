package keybackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyPair is an access key and the secret used to sign with it.
type KeyPair struct {
	AccessKey string `json:"access_key" yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" mapstructure:"secret_key"`
}

func (p KeyPair) validate() error {
	if p.AccessKey == "" || p.SecretKey == "" {
		return fmt.Errorf("%w: access key %q", ErrIncompleteKey, p.AccessKey)
	}
	return nil
}

// LoadKeysFromFile loads key pairs from a JSON or YAML file, picked by the
// file extension (.yaml and .yml are YAML, anything else JSON). The file holds
// a list of pairs:
//
//	[
//	  {"access_key": "GATEWAYKEY1", "secret_key": "s3cr3t"}
//	]
//
// or
//
//	- access_key: GATEWAYKEY1
//	  secret_key: s3cr3t
//
// An incomplete pair fails the whole file. A later pair overrides an earlier
// one with the same access key.
func LoadKeysFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	if isYAML(path) {
		err = yaml.Unmarshal(data, &pairs)
	} else {
		err = json.Unmarshal(data, &pairs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file %s: %w", path, err)
	}

	keys := make(map[string]string, len(pairs))
	for i, p := range pairs {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("keys file %s: entry %d: %w", path, i, err)
		}
		keys[p.AccessKey] = p.SecretKey
	}

	return keys, nil
}

// AppendKeyToFile adds pair to the keys file at path, creating it when
// missing. The format follows the extension as in LoadKeysFromFile.
func AppendKeyToFile(path string, pair KeyPair) error {
	if err := pair.validate(); err != nil {
		return err
	}

	var pairs []KeyPair
	yamlFormat := isYAML(path)

	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read keys file: %w", err)
	default:
		if yamlFormat {
			err = yaml.Unmarshal(data, &pairs)
		} else {
			err = json.Unmarshal(data, &pairs)
		}
		if err != nil {
			return fmt.Errorf("parse keys file %s: %w", path, err)
		}
	}

	for _, p := range pairs {
		if p.AccessKey == pair.AccessKey {
			return fmt.Errorf("keys file %s: %w: %s", path, ErrKeyExists, pair.AccessKey)
		}
	}
	pairs = append(pairs, pair)

	if yamlFormat {
		data, err = yaml.Marshal(pairs)
	} else {
		data, err = json.MarshalIndent(pairs, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode keys file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keys file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

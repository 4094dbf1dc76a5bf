package keybackend

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateKeyPair returns a fresh access key and a 240-bit random secret.
func GenerateKeyPair() (KeyPair, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate access key: %w", err)
	}

	secret := make([]byte, 30)
	if _, err := rand.Read(secret); err != nil {
		return KeyPair{}, fmt.Errorf("generate secret key: %w", err)
	}

	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return KeyPair{
		AccessKey: "SG" + hex[:18],
		SecretKey: base64.RawURLEncoding.EncodeToString(secret),
	}, nil
}

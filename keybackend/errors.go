package keybackend

import "errors"

var (
	// ErrKeyNotFound is returned when the access key does not exist in the store.
	ErrKeyNotFound = errors.New("access key not found")
	// ErrIncompleteKey is returned when a key pair lacks its access or secret key.
	ErrIncompleteKey = errors.New("incomplete key pair")
	// ErrKeyExists is returned when adding an access key that is already present.
	ErrKeyExists = errors.New("access key already exists")
)

package hash

import "errors"

// ErrEmptySecret is returned when a keyed hasher is built without a key.
var ErrEmptySecret = errors.New("hash: secret must not be empty")

// Hash hashes a plaintext and verifies a plaintext against a stored hash.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 produces hex encoded HMAC-SHA256 digests. A stored OTP digest is
// 64 characters regardless of the code length.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACSHA256{key: []byte(secret)}, nil
}

func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	sum := s.sum(str)
	return []byte(hex.EncodeToString(sum)), nil
}

// Verify reports whether hashed is the digest of str. A digest that is not
// valid hex of the right length never matches.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	stored, err := hex.DecodeString(hashed)
	if err != nil || len(stored) != sha256.Size {
		return false
	}
	return hmac.Equal(stored, s.sum(str))
}

func (s *HMACSHA256) sum(str string) []byte {
	mac := hmac.New(sha256.New, s.key)
	_, _ = mac.Write([]byte(str))
	return mac.Sum(nil)
}

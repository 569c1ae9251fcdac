package entity

import (
	"errors"
	"strings"
)

var ErrKindUnknown = errors.New("identity: principal kind is unknown")

// Kind tells which table a principal lives in.
type Kind string

const (
	KindUser        Kind = "user"
	KindDistributor Kind = "distributor"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	return k == KindUser || k == KindDistributor
}

// KindFromString parses a session or route kind.
func KindFromString(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrKindUnknown
	}
	return k, nil
}

// ChallengeState is the verifier's view of a stored challenge.
type ChallengeState int8

const (
	ChallengeNone ChallengeState = iota
	ChallengePending
	ChallengeExpired
	ChallengeLockedOut
	ChallengeConsumed
)

func (s ChallengeState) String() string {
	switch s {
	case ChallengePending:
		return "pending"
	case ChallengeExpired:
		return "expired"
	case ChallengeLockedOut:
		return "locked_out"
	case ChallengeConsumed:
		return "consumed"
	default:
		return "none"
	}
}

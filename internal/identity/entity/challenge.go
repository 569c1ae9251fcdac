package entity

import "time"

// Challenge is an outstanding one-time code for one identifier of one kind.
// Secret holds the keyed hash of the code, never the code itself.
type Challenge struct {
	ID         string
	Identifier string
	Kind       Kind
	Secret     string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Attempts   int
}

// ChallengeKey namespaces identifiers by kind so a phone can hold one open
// challenge as a user and one as a distributor.
func ChallengeKey(kind Kind, identifier string) string {
	return kind.String() + ":" + identifier
}

func (c Challenge) Key() string {
	return ChallengeKey(c.Kind, c.Identifier)
}

// IsExpired reports whether now is past the validity window.
func (c Challenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// State classifies the challenge for the verifier. A nil challenge is None.
func (c *Challenge) State(now time.Time, maxAttempts int) ChallengeState {
	switch {
	case c == nil:
		return ChallengeNone
	case c.IsExpired(now):
		return ChallengeExpired
	case c.Attempts >= maxAttempts:
		return ChallengeLockedOut
	default:
		return ChallengePending
	}
}

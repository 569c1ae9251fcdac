package goerror

import "errors"

// Reasons attached to business errors. Clients match on these strings, so they
// never change once published.
const (
	ReasonRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ReasonChallengeNotFound   = "CHALLENGE_NOT_FOUND"
	ReasonChallengeExpired    = "CHALLENGE_EXPIRED"
	ReasonTooManyAttempts     = "TOO_MANY_ATTEMPTS"
	ReasonInvalidChallenge    = "INVALID_CHALLENGE"
	ReasonDisplayNameRequired = "DISPLAY_NAME_REQUIRED"
	ReasonMaintenance         = "UNDER_MAINTENANCE"
)

// ReasonOf returns the reason carried by err, or an empty string.
func ReasonOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.reason
	}
	return ""
}

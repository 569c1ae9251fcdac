package event

import "time"

const (
	OTPIssuedDestination                     string = "otp.issued"
	OTPIssuedDestinationConsumerNotification string = "otp.issued.notification"
)

// HeaderCorrelationID carries the HTTP request's correlation id to consumers.
const HeaderCorrelationID string = "cID"

// OTPIssuedMessage carries a freshly issued code to the delivery side. It is
// the only place the plaintext code leaves the issuer.
type OTPIssuedMessage struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	Identifier string    `json:"identifier"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

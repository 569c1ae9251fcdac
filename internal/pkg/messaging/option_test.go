package messaging

import "testing"

func TestConsumeOptions(t *testing.T) {
	co := newConsumeOptions(
		WithConsumerName("otp.issued.notification"),
		WithSubscription("otp-issued-notification-sub"),
		nil,
		WithConcurrency(4),
	)

	want := consumeOptions{
		concurrency:  4,
		group:        "otp.issued.notification",
		channel:      "otp.issued.notification",
		queueGroup:   "otp.issued.notification",
		subscription: "otp-issued-notification-sub",
	}
	if co != want {
		t.Fatalf("options = %+v, want %+v", co, want)
	}
}

// Package sms delivers short text messages to phone numbers.
//
// Two drivers exist: "log" writes the message to the application log and is
// meant for development, "http" posts JSON to an SMS gateway and retries
// transient failures with a capped Fibonacci backoff.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverLog selects the log-only sender.
	DriverLog = "log"
	// DriverHTTP selects the HTTP gateway sender.
	DriverHTTP = "http"
)

var (
	// ErrUnknownDriver indicates an unsupported SMS driver.
	ErrUnknownDriver = errors.New("sms: unknown driver")
	// ErrInvalidRecipient is returned for an empty phone number.
	ErrInvalidRecipient = errors.New("sms: recipient is required")
)

// Sender sends one text message.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// Options groups driver configuration.
type Options struct {
	HTTP HTTPConfig
}

// New builds a Sender by driver name.
func New(driver string, opts Options) (Sender, error) {
	switch strings.TrimSpace(driver) {
	case DriverLog, "":
		return NewLog(), nil
	case DriverHTTP:
		return NewHTTP(opts.HTTP)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// MaskPhone keeps only the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

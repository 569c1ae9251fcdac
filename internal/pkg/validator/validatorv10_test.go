package validator

import (
	"errors"
	"testing"
)

type otpForm struct {
	Identifier  string `validate:"required,phone"`
	Code        string `validate:"required,otpcode"`
	DisplayName string `validate:"omitempty,max=255,letterspace"`
}

type payoutForm struct {
	PayoutHandle string `validate:"omitempty,payouthandle"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}
	return v
}

func TestNewV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}
	if v == nil {
		t.Fatal("NewV10Validator() returned nil validator")
	}
}

func TestV10Validator_CustomRules(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name      string
		input     any
		wantField string
	}{
		{name: "valid otp form", input: otpForm{Identifier: "9876543210", Code: "012345", DisplayName: "Asha Rao"}},
		{name: "nine digit phone", input: otpForm{Identifier: "987654321", Code: "012345"}, wantField: "identifier"},
		{name: "phone with letters", input: otpForm{Identifier: "98765abcde", Code: "012345"}, wantField: "identifier"},
		{name: "five digit code", input: otpForm{Identifier: "9876543210", Code: "01234"}, wantField: "code"},
		{name: "name with accents", input: otpForm{Identifier: "9876543210", Code: "012345", DisplayName: "Ásha Raó"}},
		{name: "name with digits", input: otpForm{Identifier: "9876543210", Code: "012345", DisplayName: "R2D2"}, wantField: "display_name"},
		{name: "valid payout handle", input: payoutForm{PayoutHandle: "asha.rao-1@okbank"}},
		{name: "empty payout handle", input: payoutForm{}},
		{name: "payout handle without bank", input: payoutForm{PayoutHandle: "asha@"}, wantField: "payout_handle"},
		{name: "payout handle with digits in bank", input: payoutForm{PayoutHandle: "asha@ok1"}, wantField: "payout_handle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want V10ValidationError", err)
			}
			if _, ok := verr.Values()[tt.wantField]; !ok {
				t.Fatalf("Validate() fields = %v, want key %q", verr.Values(), tt.wantField)
			}
		})
	}
}

func TestV10Validator_TranslatedMessage(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(otpForm{Identifier: "123", Code: "123456"})

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	if got := verr["identifier"]; got != "identifier must be exactly 10 digits" {
		t.Fatalf("message = %q", got)
	}
}

func TestV10Validator_JSONFieldNames(t *testing.T) {
	type form struct {
		Handle string `json:"upi,omitempty" validate:"required"`
		Secret string `json:"-" validate:"required"`
		Full   string `validate:"required"`
	}

	err := newValidator(t).Validate(form{})

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	if verr["upi"] != "upi is a required field" || verr["secret"] != "secret is a required field" || verr["full"] != "full is a required field" {
		t.Fatalf("fields = %v", verr)
	}
	if want := "validation error: full is a required field; secret is a required field; upi is a required field"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

var _ Validator = (*V10Validator)(nil)

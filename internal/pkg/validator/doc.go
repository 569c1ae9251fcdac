// Package validator checks input structs with go-playground/validator tags
// plus the formats watercan adds on top: phone identifiers, OTP codes,
// payout handles and letter-only names.
package validator

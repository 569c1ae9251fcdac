// Package otp generates one-time codes delivered out of band (SMS).
//
// Codes are drawn uniformly from crypto/rand, so every value in the range,
// including ones with leading zeros, is equally likely.
package otp

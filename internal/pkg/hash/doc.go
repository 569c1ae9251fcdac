// Package hash provides keyed hashing for short-lived secrets.
//
// One-time codes are stored only as a keyed digest. Verification recomputes
// the digest for the presented code and compares in constant time, so a leaked
// store does not reveal codes without the server key.
package hash

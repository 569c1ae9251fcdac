// Package jwt issues and verifies the session tokens returned by OTP
// verification. A token carries the principal id, the phone identifier and
// the principal kind (user or distributor), and is signed with HS512.
//
// The router stores verified claims on the request context with SetAuth;
// handlers read them back with GetAuth.
package jwt

// Package clock lets time-dependent code such as TOTP validation and login
// session expiry run against a fixed instant in tests.
package clock

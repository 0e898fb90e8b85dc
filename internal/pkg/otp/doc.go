// Package otp implements RFC 6238 time-based one-time passwords: secret
// generation, otpauth provisioning URIs and windowed code validation.
package otp

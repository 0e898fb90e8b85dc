// Package hash hashes and verifies account passwords.
//
// Only digests are ever persisted. Bcrypt is the default; Argon2id can be
// selected by configuration. Both append an optional pepper that lives in
// configuration, never in the credential store.
package hash

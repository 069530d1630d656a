// Package stores owns the key layout of password-recovery state on top of a
// [tokenstore.Store].
//
// # Design
//
// Every live reset attempt is two entries with the same TTL: an email index
// (keyed by a SHA-256 of the normalized email) pointing at the token, and the
// token pointing back at the email. Issuing a new token for an email deletes
// the previous token's entries before the new ones are written, so at most one
// token per email resolves at any time. Cooldown marks share the hashed email
// key.
//
// # Architecture boundaries
//
// This package does NOT generate tokens, check cooldown policy or make reset
// decisions; those belong to the flow functions in internal/flows.
//
// # What this package must NOT do
//
//   - Import goRecover or any sibling internal package.
//   - Log tokens or emails.
//   - Put raw email addresses into key names.
package stores

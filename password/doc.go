// Package password implements password hashing and verification.
//
// # Output format
//
// [Argon2] hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Bcrypt] produces standard $2a$ modular-crypt strings. [Multi] hashes with a
// primary algorithm and verifies any encoding one of its hashers recognizes,
// so history rows written by an earlier algorithm still take part in reuse
// checks.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// character classes, reuse history) is enforced by package policy.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other goRecover package.
//   - Log plaintext passwords or hash parameters at runtime.
package password

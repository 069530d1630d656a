// Package goRecover implements a password recovery workflow: a user proves
// control of a registered email address, receives a single-use, short-lived
// reset token, and exchanges it for a new password that satisfies the
// organization or system password policy.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goRecover is the public surface. It exposes [Engine], [Builder], [Config],
// [Result] and the [Directory] contract. Token bookkeeping and flow
// orchestration live under internal/; token storage, policy evaluation,
// hashing and notice delivery live in the tokenstore, policy, password and
// notify packages.
//
// # Results and errors
//
// Expected outcomes (unknown account, active cooldown, expired token, policy
// violation) are reported through [Result.Code]. The error return is reserved
// for infrastructure failures and wraps [ErrStoreUnavailable],
// [ErrDirectoryUnavailable] or [ErrHashFailed].
//
// # What this package must NOT do
//
//   - Log reset tokens or passwords.
//   - Import directory or httpapi (they import goRecover).
//   - Keep token state outside the configured tokenstore.Store.
package goRecover

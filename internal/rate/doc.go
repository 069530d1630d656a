// Package rate provides a Redis-backed fixed-window request limiter used to
// throttle the public recovery routes per client.
//
// # Window semantics
//
// INCR followed by PEXPIRE on the first hit of a window. Keys are
// "<prefix>:<key>".
//
// # What this package must NOT do
//
//   - Replace the per-address issuance cooldown, which lives in tokenstore.
//   - Be imported outside the goRecover module.
package rate

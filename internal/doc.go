// Package internal contains helpers that are private to goRecover, chiefly
// reset-token generation.
//
// # Sub-packages
//
//   - flows: pure-function orchestrators for the Engine operations
//   - logging: gommon logger construction
//   - rate: Redis fixed-window throttle for the HTTP routes
//   - stores: dual-key token bookkeeping over a tokenstore.Store
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRecover API.
//   - Be imported by any package outside the goRecover module.
package internal

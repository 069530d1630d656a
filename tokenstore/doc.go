// Package tokenstore provides the TTL key/value stores behind reset tokens and
// issuance cooldowns.
//
// [RedisStore] is the production backend (go-redis v9; SET PX, GET, DEL, PTTL,
// SET NX PX). [MemoryStore] keeps the same contract in process memory with an
// injectable clock.
//
// # Architecture boundaries
//
// Stores know nothing about emails or tokens. Key layout (the dual
// token/email entries) is owned by the caller.
//
// # What this package must NOT do
//
//   - Run background sweepers; TTL expiry is the only cleanup.
//   - Log keys or values.
package tokenstore

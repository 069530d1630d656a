// Package policy decides whether a candidate password may be stored.
//
// Two independent gates exist:
//
//   - [ComplexityChecker] enforces an organization's own policy (length,
//     character classes, login-name and recent-password reuse, optional regex)
//     and does nothing unless that policy is enabled.
//   - [LengthValidator] applies the system-wide length bounds to organizations
//     that have not enabled their own policy. Spaces are removed before
//     counting, and an absent setting or an unset bound accepts everything.
//
// Reset redemption runs the complexity check first and the length check
// second; either can reject the candidate.
//
// # What this package must NOT do
//
//   - Hash, store or log candidate passwords.
//   - Cache policies; every call reads through the [Source].
package policy

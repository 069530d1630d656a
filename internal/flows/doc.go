// Package flows contains pure-function orchestrators for the Engine's
// recovery operations.
//
// Each Run function (RunIssueResetToken, RunRedeemResetToken and friends)
// accepts a [PasswordRecoveryDeps] of plain functions and returns an outcome
// without side effects beyond those functions. The Engine wires the deps to
// its token store, directory, policy, hasher and notifier.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goRecover (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through the deps.
package flows

// Package logging builds the leveled loggers shared by the engine, the
// notifier adapters and the daemon.
//
// All loggers use github.com/labstack/gommon/log with one header format so
// lines from different components interleave cleanly.
//
// # What this package must NOT do
//
//   - Hold a process-wide logger; callers own the instance they create.
//   - Format reset tokens or passwords.
package logging

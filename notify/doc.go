// Package notify delivers templated recovery notices.
//
// A [Notice] names a template code ([CodeForgotPassword] or
// [CodePasswordChanged]), its recipients and its parameters. Senders:
//
//   - [LogSender] logs notices (development).
//   - [ResendSender] renders the embedded HTML templates and sends one email per
//     target through Resend, resolving id-only targets with an [EmailResolver].
//   - [AMQPSender] publishes the notice as JSON to a RabbitMQ exchange.
//   - [HTTPSender] posts the notice to a notification service with an HS256
//     service token.
//
// [Dispatcher] wraps any sender with a buffered background queue for notices
// whose failure must not affect the caller.
//
// # What this package must NOT do
//
//   - Import goRecover.
//   - Retry deliveries; callers decide whether a failure matters.
package notify

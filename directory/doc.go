// Package directory provides goRecover.Directory implementations that also
// serve password policies (policy.Source).
//
// [SQL] works against the account schema used by the IAM service:
//
//	iam_user                (id, login_name, email, organization_id, hash_password,
//	                         is_ldap, real_name, last_password_updated_at)
//	oauth_password_history  (id, user_id, hash_password, creation_date)
//	oauth_password_policy   (organization_id, enable_password, min_length, max_length,
//	                         digits_count, lowercase_count, uppercase_count,
//	                         special_char_count, not_username, regular_expression,
//	                         not_recent_count)
//	iam_system_setting      (min_password_length, max_password_length)
//
// Queries are built with goqu so the same code runs on PostgreSQL and MySQL.
// [Memory] keeps everything in process.
//
// # What this package must NOT do
//
//   - Create or migrate tables.
//   - Hash or verify passwords.
package directory

// Package auth implements credential handling for the booking backend.
//
// # Primitives
//
//   - BcryptHasher - salted, adaptive password hashing
//   - RandomTokenIssuer - opaque reset tokens; only their SHA-256 is persisted
//   - SessionCodec - signed, stateless session tokens (HS256 JWT)
//
// # Service
//
// Service coordinates registration, login and the password reset flow:
//
//	RequestPasswordReset -> (mail) -> VerifyResetToken -> CompletePasswordReset
//
// A user holds at most one pending reset token. Requesting a new one overwrites
// the previous token, and completing a reset clears it.
package auth

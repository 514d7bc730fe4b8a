package auth

import (
	"github.com/samber/oops"

	"booking-app/internal/errutil"
)

// Error codes carried by errors returned from this package.
const (
	CodeInvalidInput       = "AUTH_INVALID_INPUT"
	CodeInvalidPassword    = "AUTH_INVALID_PASSWORD"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeSessionInvalid     = "SESSION_INVALID"

	CodeUnknownUser      = "RESET_UNKNOWN_USER"
	CodePasswordMismatch = "RESET_PASSWORD_MISMATCH"
	CodeTokenInvalid     = "RESET_TOKEN_INVALID"
	CodeTokenExpired     = "RESET_TOKEN_EXPIRED"
)

var (
	ErrInvalidCredentials = oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	ErrEmailTaken         = oops.Code(CodeEmailTaken).Errorf("email already exists")
	ErrUserNotFound       = oops.Code(CodeUserNotFound).Errorf("user not found")
	ErrUnknownUser        = oops.Code(CodeUnknownUser).Errorf("no user exists with this email")
	ErrPasswordMismatch   = oops.Code(CodePasswordMismatch).Errorf("confirm password does not match with password")
	ErrInvalidResetToken  = oops.Code(CodeTokenInvalid).Errorf("reset token is invalid")
	ErrResetTokenExpired  = oops.Code(CodeTokenExpired).Errorf("reset token has expired")
	ErrInvalidSession     = oops.Code(CodeSessionInvalid).Errorf("invalid or expired session token")
)

// Kind classifies errors for callers that need to pick a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

var kinds = map[string]Kind{
	CodeInvalidInput:       KindValidation,
	CodeInvalidPassword:    KindValidation,
	CodePasswordMismatch:   KindValidation,
	CodeUnknownUser:        KindNotFound,
	CodeUserNotFound:       KindNotFound,
	CodeTokenInvalid:       KindNotFound,
	CodeTokenExpired:       KindNotFound,
	CodeEmailTaken:         KindConflict,
	CodeInvalidCredentials: KindUnauthorized,
	CodeSessionInvalid:     KindUnauthorized,
}

// KindOf returns the Kind of err. Errors without a known code are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if k, ok := kinds[errutil.Code(err)]; ok {
		return k
	}
	return KindInternal
}

func invalidInput(format string, args ...any) error {
	return oops.Code(CodeInvalidInput).Errorf(format, args...)
}

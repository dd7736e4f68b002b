package auth

import (
	"errors"

	"github.com/samber/oops"
)

// Error kinds. Every error returned by Service matches exactly one of these
// with errors.Is.
var (
	ErrValidation     = errors.New("validation")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication")
	ErrOTP            = errors.New("otp")
	ErrInternal       = errors.New("internal")
)

// Public messages.
const (
	MsgMissingDetails     = "Missing Details"
	MsgCredentialsNeeded  = "Email and Password are required"
	MsgEmailRequired      = "Email is required"
	MsgResetFieldsNeeded  = "Email, OTP and new password are required"
	MsgInvalidEmail       = "Invalid email"
	MsgPasswordTooLong    = "Password is too long"
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
	MsgAlreadyVerified    = "Account already verified"
	MsgInvalidOTP         = "Invalid OTP"
	MsgVerifyOTPExpired   = "OTP expired"
	MsgResetOTPExpired    = "Otp Expired"
	MsgNotAuthorized      = "Not Authorized. Please login again"
	MsgSessionExpired     = "Session expired. Please login again"
	MsgInternal           = "Something went wrong. Please try again"
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func fail(kind error, code, msg string) error {
	return oops.In("auth").Code(code).Wrap(&kindError{kind: kind, msg: msg})
}

func internal(op string, cause error) error {
	return oops.In("auth").
		Code("AUTH_INTERNAL").
		With("operation", op).
		Wrap(&kindError{kind: ErrInternal, msg: MsgInternal, cause: cause})
}

// Message returns the user-facing text for err. Causes of internal errors are
// never exposed.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return MsgInternal
}

// KindOf returns the kind err belongs to, ErrInternal for anything foreign.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrAuthentication, ErrOTP} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

package record

import (
	"errors"
	"fmt"
)

// Reason classifies a ValidationError.
type Reason int

const (
	AddressTooLong Reason = iota + 1
	UsernameTooLong
	PasswordTooLong
	InvalidAddress
	InvalidCredentials
	PortOutOfRange
)

func (r Reason) String() string {
	switch r {
	case AddressTooLong:
		return "address too long"
	case UsernameTooLong:
		return "username too long"
	case PasswordTooLong:
		return "password too long"
	case InvalidAddress:
		return "invalid address"
	case InvalidCredentials:
		return "invalid credentials"
	case PortOutOfRange:
		return "port out of range"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ValidationError is returned by Encode and Record.Validate when a field
// cannot be represented in the record.
type ValidationError struct {
	Reason Reason
	Detail string
}

func newValidationError(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.String()
	}
	return e.Reason.String() + ": " + e.Detail
}

// Is matches any ValidationError with the same Reason, so callers can write
// errors.Is(err, record.ErrAddressTooLong).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrAddressTooLong     = &ValidationError{Reason: AddressTooLong}
	ErrUsernameTooLong    = &ValidationError{Reason: UsernameTooLong}
	ErrPasswordTooLong    = &ValidationError{Reason: PasswordTooLong}
	ErrInvalidAddress     = &ValidationError{Reason: InvalidAddress}
	ErrInvalidCredentials = &ValidationError{Reason: InvalidCredentials}
	ErrPortOutOfRange     = &ValidationError{Reason: PortOutOfRange}
)

// Decoding errors.
var (
	ErrRecordSize     = errors.New("record has wrong size")
	ErrUnknownVersion = errors.New("unknown record version")
	ErrUnknownMode    = errors.New("unknown address mode")
	ErrInvalidFlag    = errors.New("invalid credentials flag")
)

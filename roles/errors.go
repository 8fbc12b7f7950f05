package roles

import "fmt"

// ErrorKind classifies a rejected engine operation.
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindRoleConflict means the requested role overlaps a role another
	// configuration already holds.
	ErrorKindRoleConflict

	// ErrorKindNotFound means no configuration has the given ID.
	ErrorKindNotFound

	// ErrorKindInvalidOperation means the operation does not apply to the
	// current state, e.g. splitting a single-role configuration.
	ErrorKindInvalidOperation
)

// RoleError is the error type returned by every Engine operation. Operations
// either succeed or return a RoleError; the configuration set is never left
// violating the role invariant.
type RoleError struct {
	Kind    ErrorKind
	Message string
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s: %s", e.KindString(), e.Message)
}

func (e *RoleError) KindString() string {
	switch e.Kind {
	case ErrorKindRoleConflict:
		return "RoleConflict"
	case ErrorKindNotFound:
		return "NotFound"
	case ErrorKindInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}

func newRoleError(kind ErrorKind, format string, args ...any) *RoleError {
	return &RoleError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsRoleConflict reports whether err is a RoleError with the conflict kind.
func IsRoleConflict(err error) bool {
	re, ok := err.(*RoleError)
	return ok && re.Kind == ErrorKindRoleConflict
}

package interfaces

import "errors"

// Failure kinds. Every rejected precondition is reported as a *Failure wrapping
// exactly one of these, so callers can match with errors.Is.
var (
	// ErrUnauthorized is returned when the caller does not match the owner,
	// the certifier, or the storage binding.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for a missing LUW, repository or provider.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on a duplicate insert.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState is returned for a state code outside its catalog.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidTransition is returned when a lifecycle precondition does not hold.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidView is returned when a cross-contract call resolves to no
	// matching view or entry point, or to one with a different shape.
	ErrInvalidView = errors.New("invalid view")
)

// Failure is an operator-facing rejection. Error returns the message verbatim.
type Failure struct {
	Kind    error
	Message string
}

// Fail builds a Failure of the given kind.
func Fail(kind error, message string) error {
	return &Failure{Kind: kind, Message: message}
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Kind
}

// FailureKind returns the taxonomy name of err, or "internal" for anything
// that is not a Failure.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidView):
		return "invalid_view"
	default:
		return "internal"
	}
}

// FailureFromKind rebuilds a Failure from a FailureKind name and message, as
// received over the wire. Unknown kinds yield a plain error.
func FailureFromKind(kind, message string) error {
	for _, k := range []error{ErrUnauthorized, ErrNotFound, ErrAlreadyExists, ErrInvalidState, ErrInvalidTransition, ErrInvalidView} {
		if FailureKind(k) == kind {
			return Fail(k, message)
		}
	}
	return errors.New(message)
}

package errs

import "errors"

// Kind is the coarse error class surfaced to callers.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidState
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Classify maps an error to its Kind. Unknown errors are internal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrCourierBusy),
		errors.Is(err, ErrDuplicateOffer),
		errors.Is(err, ErrAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConcurrentUpdate):
		return KindInvalidState
	case errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindValidation
	default:
		return KindInternal
	}
}

// Package errs provides the error types shared by the order lifecycle, the courier
// queue and the adapters around them.
//
// Input errors follow one pattern: a sentinel (ErrValueIsRequired, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrObjectNotFound), a struct carrying details, constructors with
// and without a cause, and Unwrap returning the sentinel.
//
// Business-rule failures are sentinels as well: ErrUnauthorized, ErrInvalidState,
// ErrAlreadyAssigned, ErrCourierBusy, ErrDuplicateOffer and ErrConcurrentUpdate.
// Classify folds any error into a Kind that the HTTP layer turns into a status code.
package errs

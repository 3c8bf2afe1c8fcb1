// Package errs defines the closed set of error kinds used across the
// file-index reader. Call sites wrap one of these sentinels with fmt.Errorf
// and "%w" so errors.Is/errors.As keep working through the stack, the same
// pattern compactindexsized and bucketteer use for header/magic mismatches.
package errs

import "errors"

var (
	// ErrInvalid covers caller-side mistakes: malformed options, type
	// mismatches, unsupported predicate kind or field type.
	ErrInvalid = errors.New("invalid")
	// ErrIO covers short reads, seek failures, and backing storage errors.
	ErrIO = errors.New("io error")
	// ErrKey covers a missing header field or an unknown metric name.
	ErrKey = errors.New("key error")
	// ErrCapacity covers an entry larger than the configured block size.
	ErrCapacity = errors.New("capacity exceeded")
	ErrType     = errors.New("type error")
	ErrIndex    = errors.New("index error")
	ErrOOM      = errors.New("out of memory")
	// ErrNotImplemented covers unsupported container types such as Multiset.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNotExist covers a missing option lookup.
	ErrNotExist          = errors.New("not exist")
	ErrSerialization     = errors.New("serialization error")
	ErrUnknown           = errors.New("unknown error")
)

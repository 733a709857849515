package library

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by catalog operations. Callers match them with errors.Is.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentDetailsRequired is returned when a book is issued to an unknown
	// student and no name/department were supplied to register them.
	ErrStudentDetailsRequired = fmt.Errorf("%w: name and department required", ErrStudentNotFound)

	ErrAlreadyIssued = errors.New("book is already issued")
	ErrNotIssued     = errors.New("book is not issued")

	ErrInvalidField    = errors.New("invalid field")
	ErrDuplicateBook   = errors.New("duplicate book id")
	ErrMalformedRecord = errors.New("malformed record")

	// ErrStorage wraps every failure of the persistence backend.
	ErrStorage = errors.New("storage failure")
)

// ParseError reports the first line of a book file that could not be decoded.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

package submit

import "errors"

var (
	// ErrBusy is returned when Submit is called while a submission is in flight.
	ErrBusy = errors.New("submission already in progress")
	// ErrDiscarded is returned when a submission finished after Reset and its
	// outcome was dropped.
	ErrDiscarded = errors.New("submission result discarded after reset")
)

// Envelope is implemented by errors that carry a structured backend
// response. The coordinator uses it to split field errors from the generic
// message.
type Envelope interface {
	error
	StatusCode() int
	UserMessage() string
	FormErrors() *FieldErrors
}

// ValidationError reports field errors found before anything was sent.
type ValidationError struct {
	Fields *FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) StatusCode() int { return 0 }

func (e *ValidationError) UserMessage() string { return "Bad request." }

func (e *ValidationError) FormErrors() *FieldErrors { return e.Fields }

package classify

import "errors"

// DaemonError is a failure attributable to the runtime daemon or its protocol
type DaemonError struct {
	Kind     Kind
	Op       string
	Resource Resource
	ID       string
	Message  string
	Err      error
}

func (e *DaemonError) Error() string {
	return "Docker API error: " + e.Message
}

func (e *DaemonError) Unwrap() error {
	return e.Err
}

// UnexpectedError is a failure in the facade's own delivery path,
// e.g. a sink that rejected an item.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	return "Unexpected error: " + e.Message
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid command input. No daemon call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "Invalid input: " + e.Message
}

// Required returns a ValidationError when value is empty
func Required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// KindOf returns the kind of a DaemonError in err's chain and whether one was found
func KindOf(err error) (Kind, bool) {
	var de *DaemonError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return KindOther, false
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

func IsInUse(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindInUse
}

func IsPermissionDenied(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindPermissionDenied
}

func IsUnreachable(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnreachable
}

// IsUnexpected reports whether err's chain holds an UnexpectedError
func IsUnexpected(err error) bool {
	var ue *UnexpectedError
	return errors.As(err, &ue)
}

// IsValidation reports whether err's chain holds a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

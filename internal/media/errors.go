package media

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath         = errors.New("path is not valid")
	ErrUploadFailed        = errors.New("file was not uploaded")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
	ErrInvalidImage        = errors.New("file is not a valid image")
	ErrImageTooLarge       = errors.New("image dimensions exceed the maximum allowed")
	ErrInvalidContent      = errors.New("image content is not valid")
	ErrUnknownEntityType   = errors.New("unknown entity type")
	ErrSaveFailed          = errors.New("something went wrong while saving the file")
)

// ValidationError reports a rejected attribute value. Err is one of the
// sentinel errors above and is reachable through errors.Is.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, value string, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}

package swaggerpage

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("swaggerpage: invalid options")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("swaggerpage: file not found")
)

// ConfigError reports an invalid PageOptions field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("options.%s is required", e.Field)
	}
	return fmt.Sprintf("options.%s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NotFoundError reports an asset that escapes the asset root or cannot be
// read. The message carries the requested name only, never the resolved
// path.
type NotFoundError struct {
	File  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File %s does not exist", e.File)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ErrorHandlerFunc writes the response for a failed asset request.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler answers 404 with the error message for ErrNotFound
// and a bare 500 for anything else.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

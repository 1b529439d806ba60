package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
)

// ErrInvalidDocument is returned by Validate when the document cannot be
// decoded, converted or validated.
var ErrInvalidDocument = errors.New("swagger: invalid document")

// ValidationError wraps the failing stage and its cause.
type ValidationError struct {
	Stage string // "decode", "convert" or "validate"
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("swagger: %s: %v", e.Stage, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrInvalidDocument.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidDocument }

// Validate checks the document with kin-openapi. The Swagger 2.0 document is
// decoded into openapi2.T, converted to OpenAPI 3 and validated there, so
// broken references and malformed operations are reported.
func (d *Document) Validate(ctx context.Context) error {
	data, err := d.JSON()
	if err != nil {
		return &ValidationError{Stage: "decode", Cause: err}
	}

	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return &ValidationError{Stage: "decode", Cause: err}
	}

	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return &ValidationError{Stage: "convert", Cause: err}
	}

	if err := v3.Validate(ctx); err != nil {
		return &ValidationError{Stage: "validate", Cause: err}
	}

	return nil
}

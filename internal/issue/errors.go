package issue

import "errors"

var (
	// ErrDecode marks input that is not a structurally valid issue document.
	// Truncated, empty, non-object, and schema-version-mismatched input all
	// fail with an error wrapping ErrDecode. Corruption is never masked by
	// returning a default record.
	ErrDecode = errors.New("invalid issue document")

	// ErrValidation marks fields that cannot be normalized into a valid issue.
	ErrValidation = errors.New("invalid issue fields")
)

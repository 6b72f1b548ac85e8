package pictemplate

import "errors"

var (
	// ErrDecode is returned when the template document cannot be decoded:
	// malformed container, invalid compression stream or XML syntax error.
	ErrDecode = errors.New("pictemplate: cannot decode template document")

	// ErrTemplateConflict is returned when two pages resolve to the same
	// orientation and capture count.
	ErrTemplateConflict = errors.New("pictemplate: conflicting templates")

	// ErrNoTemplate is returned when a document decodes to zero templates.
	ErrNoTemplate = errors.New("pictemplate: no template found")

	// ErrTemplateNotFound is returned when no template matches the requested
	// orientation or capture count.
	ErrTemplateNotFound = errors.New("pictemplate: template not found")

	// ErrInvalidConfig is returned for configuration values that cannot be
	// interpreted.
	ErrInvalidConfig = errors.New("pictemplate: invalid configuration")
)

package launch

import "fmt"

type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string { return fmt.Sprintf("%s: %s", e.field, e.msg) }

// NewValidationError reports a configuration field that blocks building
// a runnable command. Field names match the settings document keys.
func NewValidationError(field, format string, args ...any) error {
	return validationError{field: field, msg: fmt.Sprintf(format, args...)}
}

// IsValidation returns true if err is a configuration validation error.
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

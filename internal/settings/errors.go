package settings

import "fmt"

type profileNotFoundError struct{ name string }

func (e profileNotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %s", e.name)
}

// NewProfileNotFound reports a lookup or delete of an absent profile name.
func NewProfileNotFound(name string) error { return profileNotFoundError{name: name} }

// IsProfileNotFound returns true if err is a profile-not-found error.
func IsProfileNotFound(err error) bool {
	_, ok := err.(profileNotFoundError)
	return ok
}

type configLoadError struct{ msg string }

func (e configLoadError) Error() string { return e.msg }

// NewConfigLoadError reports a settings document that could not be read
// or parsed. It is a warning: the store falls back to defaults and stays
// usable.
func NewConfigLoadError(format string, args ...any) error {
	return configLoadError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigLoad returns true if err is a settings load warning.
func IsConfigLoad(err error) bool {
	_, ok := err.(configLoadError)
	return ok
}

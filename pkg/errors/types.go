package errors

import (
	"fmt"
)

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// UnsupportedValue represents a configuration value that isn't one of the
// accepted choices.
type UnsupportedValue struct {
	Field string
	Value string
}

func (err UnsupportedValue) Error() string {
	return fmt.Sprintf("unsupported %s: %q", err.Field, err.Value)
}

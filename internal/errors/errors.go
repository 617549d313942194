// internal/errors/errors.go
package errors

import "fmt"

// ErrInvalidScopeFormat is returned when a scope string in the config is not
// in 'spoken_language/language' format.
type ErrInvalidScopeFormat struct {
	Scope string
}

func (e *ErrInvalidScopeFormat) Error() string {
	return fmt.Sprintf("invalid scope format: %q, expected 'spoken_language/language'", e.Scope)
}

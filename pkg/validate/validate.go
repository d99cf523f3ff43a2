// Package validate holds the business-rule violation error shared by the
// entity services. Validation runs before any database interaction, so an
// Error carries no storage context and is fully recoverable.
package validate

import "fmt"

// Error reports that an entity field violates a business rule.
type Error struct {
	Entity string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Entity, e.Field, e.Reason)
}

package doctor

import (
	"context"
	"fmt"
)

// SchemaSource reports the applied and embedded schema versions of a
// database-backed store.
type SchemaSource interface {
	SchemaVersion(ctx context.Context) (applied, latest int, err error)
}

// SchemaCheck compares the applied database schema against the newest
// migration shipped with the binary.
type SchemaCheck struct {
	src SchemaSource
}

// NewSchemaCheck creates a new schema check.
func NewSchemaCheck(src SchemaSource) *SchemaCheck {
	return &SchemaCheck{src: src}
}

func (c *SchemaCheck) Name() string {
	return "Database"
}

func (c *SchemaCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	applied, latest, err := c.src.SchemaVersion(ctx)
	switch {
	case err != nil:
		result.add("schema", StatusFail, err.Error())
	case applied < latest:
		result.add("schema", StatusWarn, fmt.Sprintf("version %d, %d available; reopen to migrate", applied, latest))
	case applied > latest:
		result.add("schema", StatusWarn, fmt.Sprintf("version %d is newer than this binary (%d)", applied, latest))
	default:
		result.add("schema", StatusPass, fmt.Sprintf("version %d", applied))
	}
	return result
}

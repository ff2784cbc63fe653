package database

import (
	"fmt"
	"strings"
)

// field is a named input value checked before a write
type field struct {
	name  string
	value string
}

// requireFields returns ErrValidation naming every empty or blank field
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

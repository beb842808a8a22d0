package listings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is matched by MissingColumnsError.
var ErrMissingColumn = errors.New("missing required column")

// MissingColumnsError reports every required raw column absent from the input.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("%v: %s", ErrMissingColumn, e.Columns[0])
	}
	return fmt.Sprintf("missing %d required columns: %s", len(e.Columns), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumn }

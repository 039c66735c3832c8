package records

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every MalformedRecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError aborts a whole conversion. Row is 1-based and counts
// data rows only (the header is not row 1).
type MalformedRecordError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s row %d: column %q: malformed value %q", e.Source, e.Row, e.Column, e.Value)
	}
	return fmt.Sprintf("%s row %d: column %q: malformed value %q: %v", e.Source, e.Row, e.Column, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

var errMissingColumn = errors.New("missing column")

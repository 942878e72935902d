package domain

import "fmt"

// FormatError reports a grid file whose container structure or metadata does
// not satisfy the layout this tool expects: missing groups or attributes,
// values of an unusable type, or a dataset that is not a 2-D grid.
type FormatError struct {
	Path   string // offending file
	Detail string // what was missing or malformed
	Err    error  // underlying cause, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error in %s: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("format error in %s: %s", e.Path, e.Detail)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ProjectionError reports a projection definition the transform layer could
// not parse, or a coordinate transform that failed to evaluate.
type ProjectionError struct {
	Def string // projection definition that failed
	Err error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection error for %q: %v", e.Def, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

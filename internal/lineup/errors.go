package lineup

import "fmt"

// ParseError reports a lineup document that could not be parsed at all.
// It is distinct from individual containers failing extraction, which are
// skipped; an unparseable document usually means the page layout changed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lineup: parse document from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

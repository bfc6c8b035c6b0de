package ingest

import (
	"errors"
	"fmt"
)

// FormatError reports an element that does not match the expected IATI
// shape. Most format errors are recoverable: the element is skipped and
// the batch continues. Fatal ones invalidate the whole document.
type FormatError struct {
	// Element names the offending element, e.g. "iati-activity".
	Element string

	// Reason describes what was wrong.
	Reason string

	// Fatal marks a structural assumption violation that stops the
	// document instead of skipping the element.
	Fatal bool
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Element, e.Reason)
}

// IsFatalFormat reports whether err is a fatal FormatError.
func IsFatalFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Fatal
}

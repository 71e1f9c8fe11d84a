package blockdevice

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned when the target host OS has no fetcher.
var ErrNotImplemented = errors.New("block device inspection not implemented for this host OS")

// FetchError means the primary inspection command failed or produced
// output that could not be understood.
type FetchError struct {
	Device string
	Reason string
	Output string
}

func (e *FetchError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("fetching data for %s: %s: %s", e.Device, e.Reason, e.Output)
	}
	return fmt.Sprintf("fetching data for %s: %s", e.Device, e.Reason)
}

// InvalidValueError means a field held a value outside its expected
// domain, e.g. a read-write mode that is neither "rw" nor "ro".
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("unexpected value for %s: %q", e.Field, e.Value)
}

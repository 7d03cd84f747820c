package chgevent

import "errors"

// Sentinel errors for the change-event codec and tracker (spec.md §7).
var (
	// MalformedErr covers decode bounds-check failures and V1-V5
	// validation failures.
	MalformedErr = errors.New("chgevent: malformed or invalid change event")

	// BufferTooSmallErr means Encode's output buffer cannot hold the
	// encoded event.
	BufferTooSmallErr = errors.New("chgevent: output buffer too small")

	// FullErr means a change record already holds its maximum number of
	// entries.
	FullErr = errors.New("chgevent: change record is full")
)

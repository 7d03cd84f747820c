package pdrrepo

import "errors"

// Sentinel errors for the local PDR repository (spec.md §7).
var (
	// FullErr means the index already holds the configured maximum number
	// of records.
	FullErr = errors.New("pdrrepo: record index is full")

	// NoSpaceErr means the blob does not have enough remaining capacity
	// for a new record.
	NoSpaceErr = errors.New("pdrrepo: blob has no space for record")

	// NotFoundErr means no live (non-tombstone) entry matches the
	// requested handle.
	NotFoundErr = errors.New("pdrrepo: record handle not found")

	// InvalidOffsetErr means a GetPDR data-transfer handle is at or past
	// the end of the target record.
	InvalidOffsetErr = errors.New("pdrrepo: data transfer handle beyond record")

	// MalformedErr means a record at a given blob offset does not decode
	// to a valid common header, or its declared size runs past capacity.
	MalformedErr = errors.New("pdrrepo: record is malformed")

	// NoInitCallbackErr means RunInitAgent was called without a populate
	// callback.
	NoInitCallbackErr = errors.New("pdrrepo: RunInitAgent requires a populate callback")

	// HandleInUseErr means AddRecordWithHandle was asked to insert under a
	// handle that already identifies a live record.
	HandleInUseErr = errors.New("pdrrepo: handle already identifies a live record")
)

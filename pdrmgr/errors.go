package pdrmgr

import "errors"

// Sentinel errors for the terminus fetcher and manager (spec.md §7).
var (
	// NotFoundErr means an unknown eid, or a handle that does not map to
	// any known terminus.
	NotFoundErr = errors.New("pdrmgr: not found")

	// DuplicateTerminusErr means addTerminus was called with an eid that
	// is already registered.
	DuplicateTerminusErr = errors.New("pdrmgr: terminus eid already registered")

	// NoFreeSlotErr means all terminus slots are occupied.
	NoFreeSlotErr = errors.New("pdrmgr: no free terminus slot")

	// HandleMapFullErr means a terminus's handle map is at capacity.
	HandleMapFullErr = errors.New("pdrmgr: handle map is full")

	// TransportErr wraps a transport-level failure: a SendRecv error, a
	// non-success completion code, or a response shorter than expected.
	TransportErr = errors.New("pdrmgr: transport failure")

	// ReassemblyOverflowErr means a multi-part GetPDR transfer would
	// exceed the reassembly buffer's capacity.
	ReassemblyOverflowErr = errors.New("pdrmgr: reassembly buffer overflow")

	// MalformedErr means a reassembled record is too short to contain a
	// common header.
	MalformedErr = errors.New("pdrmgr: malformed reassembled record")
)

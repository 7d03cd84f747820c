package pdrmgr

// TerminusState is the per-terminus state machine (spec.md §4.5).
type TerminusState uint8

const (
	StateUnused     TerminusState = 0
	StateDiscovered TerminusState = 1
	StateSyncing    TerminusState = 2
	StateSynced     TerminusState = 3
	StateStale      TerminusState = 4
	StateError      TerminusState = 5
)

// handleMapEntry maps one remote handle to its remapped local handle in
// the consolidated repository (spec.md §3.3).
type handleMapEntry struct {
	remoteHandle uint32
	localHandle  uint32
}

// fetchContext tracks multi-part reassembly and iteration progress while
// fetching PDRs from one remote terminus (spec.md §3.3).
type fetchContext struct {
	reassembly       []byte
	reassemblyLen    int
	nextRecordHandle uint32
	recordsFetched   int
	retries          int
}

// terminus is the manager's per-endpoint tracking record (spec.md §3.3).
type terminus struct {
	state             TerminusState
	eid               uint8
	tid               uint8
	terminusHandle    uint16
	remoteRecordCount uint32
	remoteRepoSize    uint32
	lastSignature     uint32
	localHandleSeq    uint16
	localRecordCount  int
	fetchCtx          fetchContext
	handleMap         []handleMapEntry
}

func (t *terminus) findLocalHandle(remoteHandle uint32) (uint32, bool) {
	for _, e := range t.handleMap {
		if e.remoteHandle == remoteHandle {
			return e.localHandle, true
		}
	}
	return 0, false
}

func (t *terminus) addHandleMapping(remoteHandle, localHandle uint32, maxEntries int) error {
	if len(t.handleMap) >= maxEntries {
		return HandleMapFullErr
	}
	t.handleMap = append(t.handleMap, handleMapEntry{remoteHandle: remoteHandle, localHandle: localHandle})
	return nil
}

func (t *terminus) removeHandleMapping(remoteHandle uint32) bool {
	for i, e := range t.handleMap {
		if e.remoteHandle == remoteHandle {
			t.handleMap = append(t.handleMap[:i], t.handleMap[i+1:]...)
			return true
		}
	}
	return false
}

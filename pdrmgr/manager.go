// Package pdrmgr implements the terminus-side PDR fetcher and the
// manager that consolidates multiple remote termini's repositories into
// one local pdrrepo.Repo (spec.md §4.4, §4.5).
package pdrmgr

import (
	"github.com/openbmc/go-pldm-pdr/internal/obslog"
	"github.com/openbmc/go-pldm-pdr/pdrrepo"
	"github.com/openbmc/go-pldm-pdr/transport"
)

var mgrLog = obslog.For("pdrmgr.manager")

// Manager owns one consolidated pdrrepo.Repo and a fixed set of terminus
// slots, each tracking one remote endpoint's sync state (spec.md §4.5).
type Manager struct {
	cfg   config
	repo  *pdrrepo.Repo
	tr    transport.Transport
	slots []terminus // len == cfg.maxTermini; StateUnused marks a free slot
}

// New creates a Manager bound to repo and tr. repo is typically
// constructed with pdrrepo.WithMaxRecords large enough to hold every
// terminus's records, since the manager never grows it.
func New(repo *pdrrepo.Repo, tr transport.Transport, opts ...ManagerOption) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		cfg:   cfg,
		repo:  repo,
		tr:    tr,
		slots: make([]terminus, cfg.maxTermini),
	}
}

// AddTerminus registers a new remote endpoint in the first free slot and
// marks it Discovered, ready for SyncTerminus (spec.md §4.5).
func (m *Manager) AddTerminus(eid, tid uint8) (int, error) {
	if _, idx := m.findByEID(eid); idx >= 0 {
		return 0, DuplicateTerminusErr
	}
	for i := range m.slots {
		if m.slots[i].state == StateUnused {
			m.slots[i] = terminus{
				state:    StateDiscovered,
				eid:      eid,
				tid:      tid,
				fetchCtx: fetchContext{reassembly: make([]byte, m.cfg.reassemblyBufLen)},
			}
			mgrLog.Infof("terminus added eid=%d tid=%d slot=%d", eid, tid, i)
			return i, nil
		}
	}
	return 0, NoFreeSlotErr
}

// RemoveTerminus purges every local record the given terminus owns and
// frees its slot.
func (m *Manager) RemoveTerminus(eid uint8) error {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return NotFoundErr
	}
	m.purgeSlot(idx, t)
	m.slots[idx] = terminus{}
	mgrLog.Infof("terminus removed eid=%d slot=%d", eid, idx)
	return nil
}

func (m *Manager) purgeSlot(idx int, t *terminus) {
	for _, e := range t.handleMap {
		if err := m.repo.RemoveRecord(e.localHandle); err != nil {
			mgrLog.Warnf("purge slot=%d: remove local handle=%d: %v", idx, e.localHandle, err)
		}
	}
}

// GetTerminusState reports the current state of the terminus identified
// by eid.
func (m *Manager) GetTerminusState(eid uint8) (TerminusState, error) {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return StateUnused, NotFoundErr
	}
	return t.state, nil
}

// SyncTerminus performs a full resync of one terminus: fetches its
// repository info and signature, and if the signature has changed since
// the last sync (or the terminus's local record count no longer matches
// the remote record count, as after a partially applied change event),
// purges its previous local records and refetches every
// remote record, remapping each into this terminus's disjoint handle
// range (spec.md §4.4, §4.5).
func (m *Manager) SyncTerminus(eid uint8) error {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return NotFoundErr
	}
	wasSynced := t.state == StateSynced || t.state == StateStale
	oldSig := t.lastSignature
	t.state = StateSyncing

	info, err := fetchRepoInfo(m.tr, eid)
	if err != nil {
		t.state = StateError
		t.fetchCtx.retries++
		return err
	}

	sig, sigErr := fetchSignature(m.tr, eid)
	if sigErr != nil {
		sig = pseudoSignature(info.recordCount, info.repositorySize)
	}

	if wasSynced && oldSig != 0 && sig == oldSig && uint32(t.localRecordCount) == info.recordCount {
		t.state = StateSynced
		mgrLog.Infof("terminus eid=%d unchanged (signature=%#x), skipping refetch", eid, sig)
		return nil
	}

	m.purgeSlot(idx, t)
	t.handleMap = t.handleMap[:0]
	t.localHandleSeq = 1 // seq 0 is reserved, mirroring pdrrepo's handle-0 reservation
	t.localRecordCount = 0

	var remoteHandle uint32
	for {
		rec, err := fetchOneRecord(m.tr, eid, remoteHandle, t.fetchCtx.reassembly, m.cfg.mtu)
		if err != nil {
			t.state = StateError
			return err
		}

		localHandle := Remap(idx, t.localHandleSeq)
		if err := m.repo.AddRecordWithHandle(localHandle, rec.pdrType, rec.body); err != nil {
			t.state = StateError
			return err
		}
		if err := t.addHandleMapping(rec.remoteHandle, localHandle, m.repo.MaxRecords()); err != nil {
			t.state = StateError
			return err
		}
		t.localHandleSeq++
		t.localRecordCount++

		if rec.nextRemoteHandle == 0 {
			break
		}
		remoteHandle = rec.nextRemoteHandle
	}

	t.remoteRecordCount = info.recordCount
	t.remoteRepoSize = info.repositorySize
	t.lastSignature = sig
	t.state = StateSynced
	mgrLog.Infof("terminus eid=%d synced: %d records", eid, t.localRecordCount)
	return nil
}

// SyncAll resyncs every terminus not currently Unused, continuing past
// individual failures so one unreachable endpoint doesn't block the
// rest.
func (m *Manager) SyncAll() []error {
	var errs []error
	for i := range m.slots {
		if m.slots[i].state == StateUnused {
			continue
		}
		if err := m.SyncTerminus(m.slots[i].eid); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// CheckForChanges fetches the terminus's current signature and, if it
// differs from the last synced value (or the terminus was never synced),
// marks a currently-Synced terminus Stale without resyncing (spec.md
// §4.5's changed-vs-unchanged fast path and state diagram, which only
// defines a Synced -> Stale transition).
func (m *Manager) CheckForChanges(eid uint8) (bool, error) {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return false, NotFoundErr
	}
	info, err := fetchRepoInfo(m.tr, eid)
	if err != nil {
		return false, err
	}
	sig, sigErr := fetchSignature(m.tr, eid)
	if sigErr != nil {
		sig = pseudoSignature(info.recordCount, info.repositorySize)
	}
	oldSig := t.lastSignature
	changed := oldSig == 0 || sig != oldSig
	if !changed {
		return false, nil
	}
	if t.state == StateSynced {
		t.state = StateStale
	}
	return true, nil
}

// LookupOrigin reverse-maps a consolidated local handle back to the
// terminus eid and remote handle that produced it.
func (m *Manager) LookupOrigin(localHandle uint32) (eid uint8, remoteHandle uint32, ok bool) {
	idx := OriginIndex(localHandle)
	if idx < 0 || idx >= len(m.slots) {
		return 0, 0, false
	}
	t := &m.slots[idx]
	if t.state == StateUnused {
		return 0, 0, false
	}
	for _, e := range t.handleMap {
		if e.localHandle == localHandle {
			return t.eid, e.remoteHandle, true
		}
	}
	return 0, 0, false
}

// ApplyDelete removes the local record mapped to remoteHandle, if one
// exists. An unmapped remoteHandle is treated as already applied and is
// not an error (spec.md §4.6's idempotent-skip rule).
func (m *Manager) ApplyDelete(eid uint8, remoteHandle uint32) error {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return NotFoundErr
	}
	local, ok := t.findLocalHandle(remoteHandle)
	if !ok {
		return nil
	}
	if err := m.repo.RemoveRecord(local); err != nil {
		return err
	}
	t.removeHandleMapping(remoteHandle)
	if t.localRecordCount > 0 {
		t.localRecordCount--
	}
	return nil
}

// ApplyAdd fetches the new record named by remoteHandle and inserts it
// under a freshly allocated local handle in this terminus's range.
func (m *Manager) ApplyAdd(eid uint8, remoteHandle uint32) error {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return NotFoundErr
	}
	rec, err := fetchOneRecord(m.tr, eid, remoteHandle, t.fetchCtx.reassembly, m.cfg.mtu)
	if err != nil {
		return err
	}
	local := Remap(idx, t.localHandleSeq)
	if err := m.repo.AddRecordWithHandle(local, rec.pdrType, rec.body); err != nil {
		return err
	}
	if err := t.addHandleMapping(remoteHandle, local, m.repo.MaxRecords()); err != nil {
		return err
	}
	t.localHandleSeq++
	t.localRecordCount++
	return nil
}

// ApplyModify removes the record under its existing local handle,
// refetches the current content named by remoteHandle, and re-inserts it
// under that same local handle, so the consolidated handle a caller
// already holds keeps pointing at the same logical record (spec.md
// §4.6, mirroring original_source's handle_modifies). An unmapped
// remoteHandle is an idempotent no-op, matching ApplyDelete. On a
// sub-step failure the stale mapping is dropped and the count
// decremented, same as a delete, rather than leaving a mapping that
// points at a record no longer in the repository.
func (m *Manager) ApplyModify(eid uint8, remoteHandle uint32) error {
	t, idx := m.findByEID(eid)
	if idx < 0 {
		return NotFoundErr
	}
	local, ok := t.findLocalHandle(remoteHandle)
	if !ok {
		return nil
	}

	fail := func(err error) error {
		t.removeHandleMapping(remoteHandle)
		if t.localRecordCount > 0 {
			t.localRecordCount--
		}
		return err
	}

	if err := m.repo.RemoveRecord(local); err != nil {
		return fail(err)
	}
	rec, err := fetchOneRecord(m.tr, eid, remoteHandle, t.fetchCtx.reassembly, m.cfg.mtu)
	if err != nil {
		return fail(err)
	}
	if err := m.repo.AddRecordWithHandle(local, rec.pdrType, rec.body); err != nil {
		return fail(err)
	}
	return nil
}

func (m *Manager) findByEID(eid uint8) (*terminus, int) {
	for i := range m.slots {
		if m.slots[i].state != StateUnused && m.slots[i].eid == eid {
			return &m.slots[i], i
		}
	}
	return nil, -1
}

// Repo returns the consolidated repository, so callers can serve
// GetPDRRepositoryInfo / GetPDR / FindPDR / GetPDRRepositorySignature
// directly against it without the manager needing thin passthroughs for
// every read-only repo operation.
func (m *Manager) Repo() *pdrrepo.Repo {
	return m.repo
}

package pdrrepo

import (
	"github.com/sirupsen/logrus"

	"github.com/openbmc/go-pldm-pdr/pdrcommon"
)

const tombstoneFlag = 0x01

// indexEntry is the per-record metadata kept outside the blob (spec.md
// §3.2). Entry position is insertion order; removal leaves the entry in
// place with the tombstone bit set.
type indexEntry struct {
	recordHandle uint32
	offset       uint32
	size         uint16
	pdrType      uint8
	flags        uint8
}

func (e indexEntry) tombstoned() bool { return e.flags&tombstoneFlag != 0 }

// Info is the cached aggregate returned by GetPDRRepositoryInfo (spec.md
// §3.2).
type Info struct {
	RepositoryState             pdrcommon.RepositoryState
	RecordCount                 uint32
	RepositorySize              uint32
	LargestRecordSize           uint32
	UpdateTimestamp             uint32
	OEMUpdateTimestamp          uint32
	DataTransferHandleTimeout   uint8
}

// Repo is a zero-copy, fixed-capacity, handle-indexed PDR blob store
// (spec.md §4.1). The blob and index are sized once at construction and
// never grow; all mutation is bounds-checked against that fixed capacity.
type Repo struct {
	blob     []byte
	blobUsed uint32
	capacity uint32

	index      []indexEntry
	maxRecords int

	info Info

	sigValue uint32
	sigValid bool

	nextRecordHandle uint32

	chunkSize uint16
}

// New creates an empty repository with its own internally-owned blob.
func New(opts ...RepoOption) *Repo {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Repo{}
	r.reset(cfg, make([]byte, cfg.capacity))
	return r
}

// NewExternal binds the repository to a caller-owned blob buffer, for the
// case where a code-generation pipeline has produced a pre-packed static
// image (spec.md §4.1 initExternal). The buffer's length is the repo's
// capacity.
func NewExternal(blob []byte, opts ...RepoOption) *Repo {
	cfg := defaultConfig()
	cfg.capacity = uint32(len(blob))
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Repo{}
	r.reset(cfg, blob)
	return r
}

func (r *Repo) reset(cfg config, blob []byte) {
	r.blob = blob
	r.capacity = cfg.capacity
	r.blobUsed = 0
	r.index = make([]indexEntry, 0, cfg.maxRecords)
	r.maxRecords = cfg.maxRecords
	r.chunkSize = cfg.chunkSize
	r.info = Info{RepositoryState: pdrcommon.StateAvailable}
	r.sigValid = false
	r.sigValue = 0
	r.nextRecordHandle = 1 // 0 is reserved for "first record"
}

// AddRecord appends a new record with a freshly allocated handle. It fails
// with FullErr if the index is at capacity, or NoSpaceErr if the blob
// cannot fit the header plus body.
func (r *Repo) AddRecord(pdrType uint8, body []byte) (uint32, error) {
	handle := r.nextRecordHandle
	if err := r.writeRecord(handle, pdrType, body); err != nil {
		return 0, err
	}
	r.nextRecordHandle++
	return handle, nil
}

// writeRecord writes header+body at the current blob_used offset under the
// given handle without touching nextRecordHandle. The manager's
// forced-handle insertion (spec.md §4.5.1) uses AddRecordWithHandle, which
// additionally refuses a handle that is already live; this internal helper
// is shared by both paths and performs no such check, matching plain
// AddRecord's semantics of always allocating forward.
func (r *Repo) writeRecord(handle uint32, pdrType uint8, body []byte) error {
	totalSize := pdrcommon.HeaderSize + len(body)
	if totalSize > 0xFFFF {
		return NoSpaceErr
	}
	if len(r.index) >= r.maxRecords {
		return FullErr
	}
	if uint64(r.blobUsed)+uint64(totalSize) > uint64(r.capacity) {
		return NoSpaceErr
	}

	offset := r.blobUsed
	hdr := pdrcommon.Header{
		RecordHandle:  handle,
		HeaderVersion: pdrcommon.HeaderVersionCurrent,
		PDRType:       pdrType,
		DataLength:    uint16(len(body)),
	}
	hdr.Encode(r.blob[offset : offset+pdrcommon.HeaderSize])
	copy(r.blob[offset+pdrcommon.HeaderSize:], body)

	r.index = append(r.index, indexEntry{
		recordHandle: handle,
		offset:       offset,
		size:         uint16(totalSize),
		pdrType:      pdrType,
	})
	r.blobUsed += uint32(totalSize)

	r.updateInfo()
	logrus.Infof("pdrrepo: added record handle=%d type=%d size=%d", handle, pdrType, totalSize)
	return nil
}

// AddRecordWithHandle inserts a record under a caller-chosen handle without
// disturbing the allocator, asserting the handle is not already live. This
// is the cleaner replacement (spec.md §9 "Design Notes") for the
// save/restore dance around nextRecordHandle that the manager otherwise
// needs for forced-handle insertion.
func (r *Repo) AddRecordWithHandle(handle uint32, pdrType uint8, body []byte) error {
	if idx := r.findLiveIndex(handle); idx >= 0 {
		return HandleInUseErr
	}
	return r.writeRecord(handle, pdrType, body)
}

// IndexRecord performs zero-copy registration of a record that the caller
// has already written into the blob at offset (spec.md §4.1). It parses
// the header at that offset, derives the record's size, and advances
// nextRecordHandle past any handle it observes.
func (r *Repo) IndexRecord(offset uint32) error {
	if len(r.index) >= r.maxRecords {
		return FullErr
	}
	if uint64(offset)+uint64(pdrcommon.HeaderSize) > uint64(r.capacity) {
		return MalformedErr
	}
	hdr, err := pdrcommon.DecodeHeader(r.blob[offset:])
	if err != nil {
		return MalformedErr
	}
	size := uint32(pdrcommon.HeaderSize) + uint32(hdr.DataLength)
	if uint64(offset)+uint64(size) > uint64(r.capacity) {
		return MalformedErr
	}

	r.index = append(r.index, indexEntry{
		recordHandle: hdr.RecordHandle,
		offset:       offset,
		size:         uint16(size),
		pdrType:      hdr.PDRType,
	})
	if offset+size > r.blobUsed {
		r.blobUsed = offset + size
	}
	if hdr.RecordHandle >= r.nextRecordHandle {
		r.nextRecordHandle = hdr.RecordHandle + 1
	}

	r.updateInfo()
	return nil
}

// RemoveRecord tombstones the live entry matching handle in O(1). The
// underlying blob bytes are left untouched until a rebuild
// (RunInitAgent) — see spec.md §9 "Tombstones vs compaction".
func (r *Repo) RemoveRecord(handle uint32) error {
	idx := r.findLiveIndex(handle)
	if idx < 0 {
		return NotFoundErr
	}
	r.index[idx].flags |= tombstoneFlag
	r.updateInfo()
	logrus.Infof("pdrrepo: removed (tombstoned) record handle=%d", handle)
	return nil
}

// GetRepositoryInfo returns the cached repository-level info (spec.md
// §4.1, GetPDRRepositoryInfo).
func (r *Repo) GetRepositoryInfo() Info {
	return r.info
}

// MaxRecords returns the fixed index capacity the repository was
// constructed with, so callers that partition that capacity across
// several owners (the manager's per-terminus handle maps) have a real
// bound to enforce rather than guessing one.
func (r *Repo) MaxRecords() int {
	return r.maxRecords
}

// RunInitAgent wipes the repository and invokes populate to rebuild it
// (spec.md §4.1 RunInitAgent). The repository reports StateUpdateInProgress
// for the duration of the callback.
func (r *Repo) RunInitAgent(populate func(*Repo) error) error {
	if populate == nil {
		return NoInitCallbackErr
	}

	r.info.RepositoryState = pdrcommon.StateUpdateInProgress
	r.blobUsed = 0
	r.index = r.index[:0]
	r.nextRecordHandle = 1
	r.sigValid = false

	if err := populate(r); err != nil {
		r.info.RepositoryState = pdrcommon.StateFailed
		logrus.Errorf("pdrrepo: RunInitAgent populate callback failed: %v", err)
		return err
	}

	r.info.RepositoryState = pdrcommon.StateAvailable
	r.updateInfo()
	logrus.Info("pdrrepo: RunInitAgent rebuild complete")
	return nil
}

// findLiveIndex returns the index slot of the live (non-tombstone) entry
// with the given handle, or -1 if none matches. Handle 0 selects the first
// live entry in index order.
func (r *Repo) findLiveIndex(handle uint32) int {
	if handle == 0 {
		for i := range r.index {
			if !r.index[i].tombstoned() {
				return i
			}
		}
		return -1
	}
	for i := range r.index {
		if r.index[i].recordHandle == handle && !r.index[i].tombstoned() {
			return i
		}
	}
	return -1
}

// nextLiveAfter returns the record handle of the first live entry after
// index position idx, or 0 if none remains.
func (r *Repo) nextLiveAfter(idx int) uint32 {
	for j := idx + 1; j < len(r.index); j++ {
		if !r.index[j].tombstoned() {
			return r.index[j].recordHandle
		}
	}
	return 0
}

func (r *Repo) updateInfo() {
	var count, size, largest uint32
	for _, e := range r.index {
		if e.tombstoned() {
			continue
		}
		count++
		size += uint32(e.size)
		if uint32(e.size) > largest {
			largest = uint32(e.size)
		}
	}
	r.info.RecordCount = count
	r.info.RepositorySize = size
	r.info.LargestRecordSize = largest
	r.sigValid = false
}

package pdrrepo

// FindPDRResult is the result of a FindPDR type search (spec.md §4.1).
type FindPDRResult struct {
	FoundHandle uint32
	NextHandle  uint32 // handle of the next matching record, or 0
	Data        []byte // borrowed slice over the full record, header included
}

// FindPDR searches forward from startHandle (0 = from the beginning) for
// the first live record whose type matches pdrType (spec.md §4.1). When
// startHandle is non-zero the scan resumes at the index entry immediately
// following the one matching startHandle; if startHandle does not name a
// live entry, FindPDR fails with NotFoundErr rather than guessing where to
// resume (spec.md §9, Open Question: startHandle after a tombstoned
// record — this implementation chooses to fail rather than silently
// resuming at the successor, since a caller holding a now-invalid handle
// has stale state that should be surfaced, not papered over).
func (r *Repo) FindPDR(pdrType uint8, startHandle uint32) (FindPDRResult, error) {
	startIdx := 0
	if startHandle != 0 {
		idx := r.findLiveIndex(startHandle)
		if idx < 0 {
			return FindPDRResult{}, NotFoundErr
		}
		startIdx = idx + 1
	}

	for i := startIdx; i < len(r.index); i++ {
		e := r.index[i]
		if e.tombstoned() {
			continue
		}
		if e.pdrType != pdrType {
			continue
		}

		next := uint32(0)
		for j := i + 1; j < len(r.index); j++ {
			if r.index[j].tombstoned() {
				continue
			}
			if r.index[j].pdrType == pdrType {
				next = r.index[j].recordHandle
				break
			}
		}

		return FindPDRResult{
			FoundHandle: e.recordHandle,
			NextHandle:  next,
			Data:        r.blob[e.offset : e.offset+uint32(e.size)],
		}, nil
	}

	return FindPDRResult{}, NotFoundErr
}

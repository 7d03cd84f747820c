package pdrrepo

import "github.com/openbmc/go-pldm-pdr/pdrcommon"

// GetPDRResult is the result of a single GetPDR chunk read (spec.md §4.1).
type GetPDRResult struct {
	Data                   []byte // borrowed slice into the repo's blob
	TransferFlag           pdrcommon.TransferFlag
	NextDataTransferHandle uint32
	NextRecordHandle       uint32
}

// GetPDR implements the multi-chunk read contract (spec.md §4.1).
// recordHandle 0 selects the first live record. dataTransferHandle is the
// byte offset within the record to resume from (0 on the first chunk).
// The returned Data is a borrowed slice: it is only valid until the next
// mutation of the repository (spec.md §5, §9).
func (r *Repo) GetPDR(recordHandle, dataTransferHandle uint32) (GetPDRResult, error) {
	idx := r.findLiveIndex(recordHandle)
	if idx < 0 {
		return GetPDRResult{}, NotFoundErr
	}
	entry := r.index[idx]

	if dataTransferHandle >= uint32(entry.size) {
		return GetPDRResult{}, InvalidOffsetErr
	}

	remaining := uint32(entry.size) - dataTransferHandle
	chunk := remaining
	if chunk > uint32(r.chunkSize) {
		chunk = uint32(r.chunkSize)
	}

	start := entry.offset + dataTransferHandle
	data := r.blob[start : start+chunk]

	isFirst := dataTransferHandle == 0
	isLast := dataTransferHandle+chunk >= uint32(entry.size)

	var flag pdrcommon.TransferFlag
	switch {
	case isFirst && isLast:
		flag = pdrcommon.TransferStartAndEnd
	case isFirst:
		flag = pdrcommon.TransferStart
	case isLast:
		flag = pdrcommon.TransferEnd
	default:
		flag = pdrcommon.TransferMiddle
	}

	nextXfer := dataTransferHandle + chunk
	if isLast {
		nextXfer = 0
	}

	return GetPDRResult{
		Data:                   data,
		TransferFlag:           flag,
		NextDataTransferHandle: nextXfer,
		NextRecordHandle:       r.nextLiveAfter(idx),
	}, nil
}

package pdrmgr

import (
	"fmt"

	"github.com/openbmc/go-pldm-pdr/internal/obslog"
	"github.com/openbmc/go-pldm-pdr/pdrcommon"
	"github.com/openbmc/go-pldm-pdr/transport"
)

var fetchLog = obslog.For("pdrmgr.fetcher")

// fetchRepoInfo issues GetPDRRepositoryInfo against one terminus (spec.md
// §4.4, §6).
func fetchRepoInfo(tr transport.Transport, eid uint8) (repoInfoResponse, error) {
	resp, err := tr.SendRecv(eid, pdrcommon.PLDMTypePlatform, pdrcommon.CmdGetPDRRepositoryInfo, nil)
	if err != nil {
		fetchLog.Warnf("eid=%d: GetPDRRepositoryInfo transport failure: %v", eid, err)
		return repoInfoResponse{}, fmt.Errorf("%w: %v", TransportErr, err)
	}
	info, err := decodeRepoInfoResponse(resp)
	if err != nil {
		fetchLog.Warnf("eid=%d: GetPDRRepositoryInfo decode failure: %v", eid, err)
		return repoInfoResponse{}, err
	}
	if info.completionCode != pdrcommon.CompletionSuccess {
		fetchLog.Warnf("eid=%d: GetPDRRepositoryInfo completion code %#x", eid, info.completionCode)
		return repoInfoResponse{}, fmt.Errorf("%w: completion code %#x", TransportErr, info.completionCode)
	}
	return info, nil
}

// fetchSignature issues GetPDRRepositorySignature against one terminus.
// Not every terminus implements it (spec.md §4.4's pseudo-signature
// fallback exists for exactly this reason); callers treat any error as
// "unsupported" and fall back.
func fetchSignature(tr transport.Transport, eid uint8) (uint32, error) {
	resp, err := tr.SendRecv(eid, pdrcommon.PLDMTypePlatform, pdrcommon.CmdGetPDRRepositorySignature, nil)
	if err != nil {
		fetchLog.Debugf("eid=%d: GetPDRRepositorySignature unsupported or failed: %v", eid, err)
		return 0, fmt.Errorf("%w: %v", TransportErr, err)
	}
	sig, err := decodeSigResponse(resp)
	if err != nil {
		return 0, err
	}
	if sig.completionCode != pdrcommon.CompletionSuccess {
		fetchLog.Debugf("eid=%d: GetPDRRepositorySignature completion code %#x", eid, sig.completionCode)
		return 0, fmt.Errorf("%w: completion code %#x", TransportErr, sig.completionCode)
	}
	return sig.signature, nil
}

// pseudoSignature is the fallback cheap change-detector for termini that
// don't implement GetPDRRepositorySignature (spec.md §4.4):
// recordCount XOR (repositorySize << 16).
func pseudoSignature(recordCount, repositorySize uint32) uint32 {
	return recordCount ^ (repositorySize << 16)
}

// fetchedRecord is one fully reassembled PDR pulled from a remote
// terminus, ready for insertion into the consolidated repository.
type fetchedRecord struct {
	remoteHandle     uint32
	pdrType          uint8
	body             []byte
	nextRemoteHandle uint32
}

// fetchOneRecord reassembles a complete record starting at remoteHandle,
// issuing as many GetPDR requests as the transfer requires (spec.md
// §4.1, §4.4). reassembly is the terminus's scratch buffer; it is reused
// across calls and must not be retained by the caller. mtu bounds the
// number of bytes requested per GetPDR call, matching spec.md §6's
// transport-MTU ceiling; the remaining reassembly capacity bounds it
// further so the buffer is never overrun.
func fetchOneRecord(tr transport.Transport, eid uint8, remoteHandle uint32, reassembly []byte, mtu int) (fetchedRecord, error) {
	var (
		dataTransferHandle uint32
		opFlag             = pdrcommon.TransferOpGetFirstPart
		n                  int
		header             pdrcommon.Header
		haveHeader         bool
	)

	for {
		want := mtu
		if remaining := len(reassembly) - n; want <= 0 || want > remaining {
			want = remaining
		}
		req := getPDRRequest{
			recordHandle:       remoteHandle,
			dataTransferHandle: dataTransferHandle,
			transferOpFlag:     opFlag,
			requestCount:       uint16(want),
		}
		raw, err := tr.SendRecv(eid, pdrcommon.PLDMTypePlatform, pdrcommon.CmdGetPDR, req.encode())
		if err != nil {
			fetchLog.Warnf("eid=%d: GetPDR(handle=%d) transport failure: %v", eid, remoteHandle, err)
			return fetchedRecord{}, fmt.Errorf("%w: %v", TransportErr, err)
		}
		resp, err := decodeGetPDRResponse(raw)
		if err != nil {
			fetchLog.Warnf("eid=%d: GetPDR(handle=%d) decode failure: %v", eid, remoteHandle, err)
			return fetchedRecord{}, err
		}
		if resp.completionCode != pdrcommon.CompletionSuccess {
			fetchLog.Warnf("eid=%d: GetPDR(handle=%d) completion code %#x", eid, remoteHandle, resp.completionCode)
			return fetchedRecord{}, fmt.Errorf("%w: completion code %#x", TransportErr, resp.completionCode)
		}

		if n+len(resp.data) > len(reassembly) {
			fetchLog.Warnf("eid=%d: GetPDR(handle=%d) reassembly overflow at %d bytes", eid, remoteHandle, n+len(resp.data))
			return fetchedRecord{}, ReassemblyOverflowErr
		}
		copy(reassembly[n:], resp.data)
		n += len(resp.data)

		if !haveHeader && n >= pdrcommon.HeaderSize {
			header, err = pdrcommon.DecodeHeader(reassembly[:pdrcommon.HeaderSize])
			if err != nil {
				return fetchedRecord{}, err
			}
			haveHeader = true
		}

		done := resp.transferFlag == pdrcommon.TransferEnd || resp.transferFlag == pdrcommon.TransferStartAndEnd
		if done {
			if !haveHeader {
				fetchLog.Warnf("eid=%d: GetPDR(handle=%d) ended before a full header arrived", eid, remoteHandle)
				return fetchedRecord{}, MalformedErr
			}
			end := pdrcommon.HeaderSize + int(header.DataLength)
			if n < end {
				fetchLog.Warnf("eid=%d: GetPDR(handle=%d) ended with %d of %d declared bytes", eid, remoteHandle, n, end)
				return fetchedRecord{}, MalformedErr
			}
			body := make([]byte, header.DataLength)
			copy(body, reassembly[pdrcommon.HeaderSize:end])
			return fetchedRecord{
				remoteHandle:     header.RecordHandle,
				pdrType:          header.PDRType,
				body:             body,
				nextRemoteHandle: resp.nextRecordHandle,
			}, nil
		}

		dataTransferHandle = resp.nextDataTransferHandle
		opFlag = pdrcommon.TransferOpGetNextPart
	}
}

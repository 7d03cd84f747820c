package pdrmgr

import (
	"encoding/binary"
	"errors"

	"github.com/openbmc/go-pldm-pdr/pdrcommon"
)

// fakeRecord is one record held by a simulated remote terminus.
type fakeRecord struct {
	handle  uint32
	pdrType uint8
	body    []byte
}

// fakeTerminus simulates a remote endpoint's GetPDRRepositoryInfo, GetPDR,
// and (optionally) GetPDRRepositorySignature commands, entirely in
// memory, so pdrmgr's sync and incremental-apply paths can be exercised
// without a real transport.
type fakeTerminus struct {
	records           []fakeRecord
	chunkSize         int
	supportsSignature bool
	signature         uint32
	failNextGetPDR    bool
}

func (f *fakeTerminus) encodedRecord(r fakeRecord) []byte {
	buf := make([]byte, pdrcommon.HeaderSize+len(r.body))
	hdr := pdrcommon.Header{
		RecordHandle:  r.handle,
		HeaderVersion: pdrcommon.HeaderVersionCurrent,
		PDRType:       r.pdrType,
		DataLength:    uint16(len(r.body)),
	}
	hdr.Encode(buf)
	copy(buf[pdrcommon.HeaderSize:], r.body)
	return buf
}

func (f *fakeTerminus) findRecord(handle uint32) (fakeRecord, int) {
	if handle == 0 {
		if len(f.records) == 0 {
			return fakeRecord{}, -1
		}
		return f.records[0], 0
	}
	for i, r := range f.records {
		if r.handle == handle {
			return r, i
		}
	}
	return fakeRecord{}, -1
}

func (f *fakeTerminus) SendRecv(eid uint8, pldmType uint8, command uint8, req []byte) ([]byte, error) {
	switch command {
	case pdrcommon.CmdGetPDRRepositoryInfo:
		return f.repoInfoResponse(), nil

	case pdrcommon.CmdGetPDR:
		if f.failNextGetPDR {
			f.failNextGetPDR = false
			return nil, errors.New("simulated transport failure")
		}
		return f.getPDRResponse(req)

	case pdrcommon.CmdGetPDRRepositorySignature:
		if !f.supportsSignature {
			return nil, errors.New("simulated: command not supported")
		}
		buf := make([]byte, sigRespLen)
		buf[0] = byte(pdrcommon.CompletionSuccess)
		binary.LittleEndian.PutUint32(buf[1:5], f.signature)
		return buf, nil

	default:
		return nil, errors.New("fakeTerminus: unsupported command")
	}
}

func (f *fakeTerminus) repoInfoResponse() []byte {
	var totalSize uint32
	for _, r := range f.records {
		totalSize += uint32(pdrcommon.HeaderSize + len(r.body))
	}
	buf := make([]byte, repoInfoRespMinLen)
	buf[0] = byte(pdrcommon.CompletionSuccess)
	buf[1] = byte(pdrcommon.StateAvailable)
	offset := 1 + 1 + 13 + 13
	binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(len(f.records)))
	binary.LittleEndian.PutUint32(buf[offset+4:offset+8], totalSize)
	return buf
}

func (f *fakeTerminus) getPDRResponse(req []byte) ([]byte, error) {
	if len(req) < getPDRReqLen {
		return nil, errors.New("fakeTerminus: short GetPDR request")
	}
	recordHandle := binary.LittleEndian.Uint32(req[0:4])
	dataTransferHandle := binary.LittleEndian.Uint32(req[4:8])

	rec, idx := f.findRecord(recordHandle)
	if idx < 0 {
		buf := make([]byte, getPDRRespHeaderLen)
		buf[0] = byte(pdrcommon.CompletionInvalidRecordHandle)
		return buf, nil
	}

	full := f.encodedRecord(rec)
	chunk := f.chunkSize
	if chunk <= 0 || chunk > len(full) {
		chunk = len(full)
	}

	remaining := len(full) - int(dataTransferHandle)
	if remaining > chunk {
		remaining = chunk
	}
	data := full[dataTransferHandle : int(dataTransferHandle)+remaining]

	isFirst := dataTransferHandle == 0
	isLast := int(dataTransferHandle)+remaining >= len(full)

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

	nextXfer := uint32(0)
	if !isLast {
		nextXfer = dataTransferHandle + uint32(remaining)
	}

	nextRecordHandle := uint32(0)
	if isLast && idx+1 < len(f.records) {
		nextRecordHandle = f.records[idx+1].handle
	}

	buf := make([]byte, getPDRRespHeaderLen+len(data))
	buf[0] = byte(pdrcommon.CompletionSuccess)
	binary.LittleEndian.PutUint32(buf[1:5], nextRecordHandle)
	binary.LittleEndian.PutUint32(buf[5:9], nextXfer)
	buf[9] = byte(flag)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(len(data)))
	copy(buf[getPDRRespHeaderLen:], data)
	return buf, nil
}

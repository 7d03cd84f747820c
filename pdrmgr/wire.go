package pdrmgr

import (
	"encoding/binary"

	"github.com/openbmc/go-pldm-pdr/pdrcommon"
)

// Wire-level request/response layouts for the three PLDM commands the
// fetcher issues (spec.md §6). Timestamps are PLDM timestamp104 values;
// the core never interprets them, only carries them.

const (
	repoInfoRespMinLen  = 1 + 1 + 13 + 13 + 4 + 4 + 4 + 1 // 41 bytes
	getPDRReqLen        = 4 + 4 + 1 + 2 + 2               // 13 bytes
	getPDRRespHeaderLen = 1 + 4 + 4 + 1 + 2                // 12 bytes
	sigRespLen          = 1 + 4                            // 5 bytes
)

// repoInfoResponse is the decoded GetPDRRepositoryInfo (0x50) response.
type repoInfoResponse struct {
	completionCode pdrcommon.CompletionCode
	recordCount    uint32
	repositorySize uint32
}

func decodeRepoInfoResponse(buf []byte) (repoInfoResponse, error) {
	if len(buf) < repoInfoRespMinLen {
		return repoInfoResponse{}, TransportErr
	}
	offset := 1 + 1 + 13 + 13 // skip cc, state, updTs, oemTs
	return repoInfoResponse{
		completionCode: pdrcommon.CompletionCode(buf[0]),
		recordCount:    binary.LittleEndian.Uint32(buf[offset : offset+4]),
		repositorySize: binary.LittleEndian.Uint32(buf[offset+4 : offset+8]),
	}, nil
}

// getPDRRequest is the GetPDR (0x51) request payload.
type getPDRRequest struct {
	recordHandle       uint32
	dataTransferHandle uint32
	transferOpFlag     pdrcommon.TransferOpFlag
	requestCount       uint16
	recordChangeNumber uint16
}

func (r getPDRRequest) encode() []byte {
	buf := make([]byte, getPDRReqLen)
	binary.LittleEndian.PutUint32(buf[0:4], r.recordHandle)
	binary.LittleEndian.PutUint32(buf[4:8], r.dataTransferHandle)
	buf[8] = byte(r.transferOpFlag)
	binary.LittleEndian.PutUint16(buf[9:11], r.requestCount)
	binary.LittleEndian.PutUint16(buf[11:13], r.recordChangeNumber)
	return buf
}

// getPDRResponse is the decoded GetPDR (0x51) response.
type getPDRResponse struct {
	completionCode         pdrcommon.CompletionCode
	nextRecordHandle       uint32
	nextDataTransferHandle uint32
	transferFlag           pdrcommon.TransferFlag
	responseCount          uint16
	data                   []byte
}

func decodeGetPDRResponse(buf []byte) (getPDRResponse, error) {
	if len(buf) < getPDRRespHeaderLen {
		return getPDRResponse{}, TransportErr
	}
	resp := getPDRResponse{
		completionCode:         pdrcommon.CompletionCode(buf[0]),
		nextRecordHandle:       binary.LittleEndian.Uint32(buf[1:5]),
		nextDataTransferHandle: binary.LittleEndian.Uint32(buf[5:9]),
		transferFlag:           pdrcommon.TransferFlag(buf[9]),
		responseCount:          binary.LittleEndian.Uint16(buf[10:12]),
	}
	end := getPDRRespHeaderLen + int(resp.responseCount)
	if len(buf) < end {
		return getPDRResponse{}, TransportErr
	}
	resp.data = buf[getPDRRespHeaderLen:end]
	return resp, nil
}

// sigResponse is the decoded GetPDRRepositorySignature (0x53) response.
type sigResponse struct {
	completionCode pdrcommon.CompletionCode
	signature      uint32
}

func decodeSigResponse(buf []byte) (sigResponse, error) {
	if len(buf) < sigRespLen {
		return sigResponse{}, TransportErr
	}
	return sigResponse{
		completionCode: pdrcommon.CompletionCode(buf[0]),
		signature:      binary.LittleEndian.Uint32(buf[1:5]),
	}, nil
}

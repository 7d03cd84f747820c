// Package pdrcommon holds the wire-level types shared by the repository,
// manager, and change-event packages: the 10-byte PDR common header and the
// transfer/completion-code constants from DSP0248.
package pdrcommon

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the length in bytes of the PDR common header that precedes
// every record's body.
const HeaderSize = 10

// HeaderTooShortErr is returned when fewer than HeaderSize bytes are
// available to decode a common header.
var HeaderTooShortErr = errors.New("pdrcommon: buffer shorter than header size")

// Header is the 10-byte common header shared by every PDR record
// (spec.md §3.1). The core never parses a record's body beyond this header.
type Header struct {
	RecordHandle       uint32
	HeaderVersion      uint8
	PDRType            uint8
	RecordChangeNumber uint16
	DataLength         uint16
}

// HeaderVersionCurrent is the only header-version value the core ever writes.
const HeaderVersionCurrent uint8 = 0x01

// Encode writes the header into buf[0:HeaderSize] in little-endian order.
// buf must have at least HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.RecordHandle)
	buf[4] = h.HeaderVersion
	buf[5] = h.PDRType
	binary.LittleEndian.PutUint16(buf[6:8], h.RecordChangeNumber)
	binary.LittleEndian.PutUint16(buf[8:10], h.DataLength)
}

// DecodeHeader parses a common header from the front of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, HeaderTooShortErr
	}
	return Header{
		RecordHandle:       binary.LittleEndian.Uint32(buf[0:4]),
		HeaderVersion:      buf[4],
		PDRType:            buf[5],
		RecordChangeNumber: binary.LittleEndian.Uint16(buf[6:8]),
		DataLength:         binary.LittleEndian.Uint16(buf[8:10]),
	}, nil
}

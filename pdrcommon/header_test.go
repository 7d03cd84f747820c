package pdrcommon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeader_EncodeMatchesS1Layout(t *testing.T) {
	h := Header{RecordHandle: 1, HeaderVersion: 1, PDRType: 1, RecordChangeNumber: 0, DataLength: 2}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x02, 0x00}, buf)
}

func TestDecodeHeader_RoundTrip(t *testing.T) {
	h := Header{RecordHandle: 0xDEADBEEF, HeaderVersion: 1, PDRType: 42, RecordChangeNumber: 7, DataLength: 300}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDecodeHeader_TooShort(t *testing.T) {
	_, err := DecodeHeader(make([]byte, 4))
	require.ErrorIs(t, err, HeaderTooShortErr)
}

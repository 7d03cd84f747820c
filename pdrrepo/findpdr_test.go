package pdrrepo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindPDR_FirstMatch(t *testing.T) {
	r := New()
	h1, err := r.AddRecord(5, []byte{0x01})
	require.NoError(t, err)
	_, err = r.AddRecord(9, []byte{0x02})
	require.NoError(t, err)
	h3, err := r.AddRecord(5, []byte{0x03})
	require.NoError(t, err)

	res, err := r.FindPDR(5, 0)
	require.NoError(t, err)
	require.Equal(t, h1, res.FoundHandle)
	require.Equal(t, h3, res.NextHandle)
}

func TestFindPDR_ContinuationAfterStartHandle(t *testing.T) {
	r := New()
	h1, err := r.AddRecord(5, []byte{0x01})
	require.NoError(t, err)
	h2, err := r.AddRecord(5, []byte{0x02})
	require.NoError(t, err)

	res, err := r.FindPDR(5, h1)
	require.NoError(t, err)
	require.Equal(t, h2, res.FoundHandle)
	require.Equal(t, uint32(0), res.NextHandle)
}

func TestFindPDR_NoMatch(t *testing.T) {
	r := New()
	_, err := r.AddRecord(5, []byte{0x01})
	require.NoError(t, err)

	_, err = r.FindPDR(9, 0)
	require.ErrorIs(t, err, NotFoundErr)
}

func TestFindPDR_UnknownStartHandleFails(t *testing.T) {
	r := New()
	_, err := r.AddRecord(5, []byte{0x01})
	require.NoError(t, err)

	_, err = r.FindPDR(5, 999)
	require.ErrorIs(t, err, NotFoundErr)
}

func TestFindPDR_SkipsTombstones(t *testing.T) {
	r := New()
	h1, err := r.AddRecord(5, []byte{0x01})
	require.NoError(t, err)
	require.NoError(t, r.RemoveRecord(h1))
	h2, err := r.AddRecord(5, []byte{0x02})
	require.NoError(t, err)

	res, err := r.FindPDR(5, 0)
	require.NoError(t, err)
	require.Equal(t, h2, res.FoundHandle)
}

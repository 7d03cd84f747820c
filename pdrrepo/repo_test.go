package pdrrepo

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openbmc/go-pldm-pdr/pdrcommon"
)

func TestAddRecord_HappyPath(t *testing.T) {
	r := New()

	handle, err := r.AddRecord(1, []byte{0xAA, 0xBB})
	require.NoError(t, err)
	require.Equal(t, uint32(1), handle)

	info := r.GetRepositoryInfo()
	require.Equal(t, uint32(1), info.RecordCount)
	require.Equal(t, uint32(12), info.RepositorySize)
	require.Equal(t, uint32(12), info.LargestRecordSize)
}

func TestAddRecord_HandlesIncreaseMonotonically(t *testing.T) {
	r := New()

	h1, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)
	h2, err := r.AddRecord(1, []byte{0x02})
	require.NoError(t, err)

	require.Equal(t, uint32(1), h1)
	require.Equal(t, uint32(2), h2)
}

func TestAddRecord_FullIndexFails(t *testing.T) {
	r := New(WithMaxRecords(1))

	_, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)

	before := r.GetRepositoryInfo()

	_, err = r.AddRecord(1, []byte{0x02})
	require.ErrorIs(t, err, FullErr)

	after := r.GetRepositoryInfo()
	require.Equal(t, before, after, "a failed add must leave no partial state")
}

func TestAddRecord_NoSpaceFails(t *testing.T) {
	r := New(WithCapacity(pdrcommon.HeaderSize + 2))

	_, err := r.AddRecord(1, []byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, NoSpaceErr)
}

func TestRemoveRecord_TombstoneAndSignatureInvalidation(t *testing.T) {
	r := New()

	h1, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)
	_, err = r.AddRecord(1, []byte{0x02})
	require.NoError(t, err)

	sig0 := r.GetSignature()

	err = r.RemoveRecord(h1)
	require.NoError(t, err)

	info := r.GetRepositoryInfo()
	require.Equal(t, uint32(1), info.RecordCount)

	require.False(t, r.sigValid, "removal must invalidate the cached signature")

	// Tombstoning leaves the blob bytes in place, so the recomputed value
	// is the CRC over the same blob[0:blobUsed) range.
	sig1 := r.GetSignature()
	require.Equal(t, crc32.ChecksumIEEE(r.blob[:r.blobUsed]), sig1)
	require.Equal(t, sig0, sig1)
}

func TestRemoveRecord_IdempotentAfterFirstCall(t *testing.T) {
	r := New()
	h, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)

	require.NoError(t, r.RemoveRecord(h))
	require.ErrorIs(t, r.RemoveRecord(h), NotFoundErr)
}

func TestRemoveRecord_NotFound(t *testing.T) {
	r := New()
	require.ErrorIs(t, r.RemoveRecord(99), NotFoundErr)
}

func TestGetSignature_CoherentAfterMutation(t *testing.T) {
	r := New()
	_, err := r.AddRecord(2, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	sig := r.GetSignature()
	require.Equal(t, sig, r.GetSignature(), "repeated reads without mutation must be stable")
}

func TestIndexRecord_ZeroCopyRegistration(t *testing.T) {
	blob := make([]byte, 64)
	hdr := pdrcommon.Header{RecordHandle: 7, HeaderVersion: 1, PDRType: 3, DataLength: 2}
	hdr.Encode(blob[0:10])
	blob[10] = 0xAA
	blob[11] = 0xBB

	r := NewExternal(blob)
	err := r.IndexRecord(0)
	require.NoError(t, err)

	info := r.GetRepositoryInfo()
	require.Equal(t, uint32(1), info.RecordCount)

	res, err := r.GetPDR(7, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, res.Data[10:])

	// nextRecordHandle must have advanced past the indexed handle.
	next, err := r.AddRecord(3, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, uint32(8), next)
}

func TestRunInitAgent_RebuildsViaCallback(t *testing.T) {
	r := New()
	_, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)

	err = r.RunInitAgent(func(repo *Repo) error {
		_, addErr := repo.AddRecord(2, []byte{0xAA, 0xBB, 0xCC})
		return addErr
	})
	require.NoError(t, err)

	info := r.GetRepositoryInfo()
	require.Equal(t, pdrcommon.StateAvailable, info.RepositoryState)
	require.Equal(t, uint32(1), info.RecordCount)
	require.Equal(t, uint32(13), info.RepositorySize)
}

func TestRunInitAgent_NoCallbackFails(t *testing.T) {
	r := New()
	require.ErrorIs(t, r.RunInitAgent(nil), NoInitCallbackErr)
}

func TestRunInitAgent_CallbackFailureMarksFailedState(t *testing.T) {
	r := New(WithMaxRecords(1))
	boom := r.RunInitAgent(func(repo *Repo) error {
		if _, err := repo.AddRecord(1, []byte{0x01}); err != nil {
			return err
		}
		_, err := repo.AddRecord(1, []byte{0x02})
		return err
	})
	require.Error(t, boom)
	require.Equal(t, pdrcommon.StateFailed, r.GetRepositoryInfo().RepositoryState)
}

func TestAddRecordWithHandle_RejectsLiveHandle(t *testing.T) {
	r := New()
	h, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)

	err = r.AddRecordWithHandle(h, 1, []byte{0x02})
	require.ErrorIs(t, err, HandleInUseErr)
}

func TestAddRecordWithHandle_DoesNotDisturbAllocator(t *testing.T) {
	r := New()
	h1, err := r.AddRecord(1, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, uint32(1), h1)

	require.NoError(t, r.AddRecordWithHandle(0x10001, 5, []byte{0x02}))

	h2, err := r.AddRecord(1, []byte{0x03})
	require.NoError(t, err)
	require.Equal(t, uint32(2), h2)
}

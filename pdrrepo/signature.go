package pdrrepo

import "hash/crc32"

// GetSignature returns the repository's signature: a CRC-32 (IEEE
// polynomial 0xEDB88320) over blob[0:blobUsed). The value is cached and
// only recomputed after a mutation invalidates it (spec.md §3.2, §4.1).
func (r *Repo) GetSignature() uint32 {
	if !r.sigValid {
		r.sigValue = crc32.ChecksumIEEE(r.blob[:r.blobUsed])
		r.sigValid = true
	}
	return r.sigValue
}

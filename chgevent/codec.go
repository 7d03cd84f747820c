package chgevent

import "encoding/binary"

// Validate checks a change event against DSP0248 rules V1-V5 (spec.md
// §4.2). It is applied by Encode before serializing and by Decode after
// parsing.
func Validate(e Event) error {
	if e.Format == FormatRefreshEntireRepository {
		// V1: refreshEntireRepository must carry no change records.
		if len(e.Records) != 0 {
			return MalformedErr
		}
		return nil
	}

	if e.Format != FormatPDRTypes && e.Format != FormatPDRHandles {
		return MalformedErr
	}

	// V5: at most MaxRecordsPerEvent change records.
	if len(e.Records) > MaxRecordsPerEvent {
		return MalformedErr
	}

	var lastOp Operation
	for i, rec := range e.Records {
		// V2: formatIsPDRHandles cannot use refreshAllRecords.
		if e.Format == FormatPDRHandles && rec.Operation == OpRefreshAllRecords {
			return MalformedErr
		}

		// V5: operation code must be in range.
		if rec.Operation > OpRecordsModified {
			return MalformedErr
		}

		// V4: records are in non-decreasing operation order.
		if i > 0 && rec.Operation < lastOp {
			return MalformedErr
		}
		lastOp = rec.Operation

		// V5: each record's entry count is bounded.
		if len(rec.Entries) > MaxEntriesPerRecord {
			return MalformedErr
		}
	}

	// V3 is structural: a single Format field per Event makes mixing
	// types and handles within one event impossible by construction.
	return nil
}

// Encode validates e and serializes it into buf in wire format (spec.md
// §4.2):
//
//	[format: u8][numRecords: u8]
//	  repeat numRecords:
//	    [operation: u8][numEntries: u8][entry: u32] x numEntries
//
// It returns the number of bytes written, or an error on validation
// failure or buffer overflow.
func Encode(e Event, buf []byte) (int, error) {
	if err := Validate(e); err != nil {
		return 0, err
	}

	offset := 0
	if offset+2 > len(buf) {
		return 0, BufferTooSmallErr
	}
	buf[offset] = byte(e.Format)
	buf[offset+1] = byte(len(e.Records))
	offset += 2

	for _, rec := range e.Records {
		if offset+2 > len(buf) {
			return 0, BufferTooSmallErr
		}
		buf[offset] = byte(rec.Operation)
		buf[offset+1] = byte(len(rec.Entries))
		offset += 2

		for _, entry := range rec.Entries {
			if offset+4 > len(buf) {
				return 0, BufferTooSmallErr
			}
			binary.LittleEndian.PutUint32(buf[offset:offset+4], entry)
			offset += 4
		}
	}

	return offset, nil
}

// Decode parses wire-format event data bounds-safely — every read is
// checked against the remaining buffer before it is made — then validates
// the result (spec.md §4.2).
func Decode(buf []byte) (Event, error) {
	if len(buf) < 2 {
		return Event{}, MalformedErr
	}

	e := Event{Format: Format(buf[0])}
	numRecords := int(buf[1])
	offset := 2

	if e.Format == FormatRefreshEntireRepository {
		if numRecords != 0 {
			return Event{}, MalformedErr
		}
		return e, nil
	}

	if numRecords > MaxRecordsPerEvent {
		return Event{}, MalformedErr
	}

	e.Records = make([]ChangeRecord, numRecords)
	for i := 0; i < numRecords; i++ {
		if offset+2 > len(buf) {
			return Event{}, MalformedErr
		}
		rec := ChangeRecord{Operation: Operation(buf[offset])}
		numEntries := int(buf[offset+1])
		offset += 2

		if numEntries > MaxEntriesPerRecord {
			return Event{}, MalformedErr
		}

		entriesBytes := numEntries * 4
		if offset+entriesBytes > len(buf) {
			return Event{}, MalformedErr
		}

		rec.Entries = make([]uint32, numEntries)
		for j := 0; j < numEntries; j++ {
			rec.Entries[j] = binary.LittleEndian.Uint32(buf[offset : offset+4])
			offset += 4
		}

		e.Records[i] = rec
	}

	if err := Validate(e); err != nil {
		return Event{}, err
	}
	return e, nil
}

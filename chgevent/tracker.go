package chgevent

// Tracker accumulates a terminus's pending PDR changes and composes them
// into a change event on demand (spec.md §4.3). It maintains three
// preconfigured change records — deletes, adds, modifies — each bounded to
// MaxEntriesPerRecord.
type Tracker struct {
	deletes  []uint32
	adds     []uint32
	modifies []uint32
}

// NewTracker returns an empty change tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordDelete appends a pending deleted-entry (remote handle, or PDR type
// under the types format).
func (t *Tracker) RecordDelete(entry uint32) error {
	if len(t.deletes) >= MaxEntriesPerRecord {
		return FullErr
	}
	t.deletes = append(t.deletes, entry)
	return nil
}

// RecordAdd appends a pending added-entry.
func (t *Tracker) RecordAdd(entry uint32) error {
	if len(t.adds) >= MaxEntriesPerRecord {
		return FullErr
	}
	t.adds = append(t.adds, entry)
	return nil
}

// RecordModify appends a pending modified-entry.
func (t *Tracker) RecordModify(entry uint32) error {
	if len(t.modifies) >= MaxEntriesPerRecord {
		return FullErr
	}
	t.modifies = append(t.modifies, entry)
	return nil
}

// HasChanges reports whether any pending entries have been recorded since
// the tracker was created or last cleared.
func (t *Tracker) HasChanges() bool {
	return len(t.deletes) > 0 || len(t.adds) > 0 || len(t.modifies) > 0
}

// Clear discards all pending entries.
func (t *Tracker) Clear() {
	t.deletes = nil
	t.adds = nil
	t.modifies = nil
}

// BuildEvent composes an event from the tracker's pending entries (spec.md
// §4.3). With nothing pending it produces a refreshEntireRepository event
// with no records. Otherwise it composes change records in canonical order
// (deletes -> adds -> modifies, per V4), skipping empty ones. If maxSize is
// positive and the composed event's encoded size would exceed it, the size
// fallback discards the delta and emits refreshEntireRepository instead —
// a transport-MTU overflow is treated exactly like a capacity overflow,
// since a truncated delta can never be safely applied.
func (t *Tracker) BuildEvent(format Format, maxSize int) Event {
	if !t.HasChanges() {
		return Event{Format: FormatRefreshEntireRepository}
	}

	e := Event{Format: format}
	if len(t.deletes) > 0 {
		e.Records = append(e.Records, ChangeRecord{Operation: OpRecordsDeleted, Entries: t.deletes})
	}
	if len(t.adds) > 0 {
		e.Records = append(e.Records, ChangeRecord{Operation: OpRecordsAdded, Entries: t.adds})
	}
	if len(t.modifies) > 0 {
		e.Records = append(e.Records, ChangeRecord{Operation: OpRecordsModified, Entries: t.modifies})
	}

	if len(e.Records) > MaxRecordsPerEvent {
		return Event{Format: FormatRefreshEntireRepository}
	}
	if maxSize > 0 && e.EncodedSize() > maxSize {
		return Event{Format: FormatRefreshEntireRepository}
	}

	return e
}

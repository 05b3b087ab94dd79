package fo

import "time"

// ActionKind identifies a journaled mutation. The set is closed: reversal
// strategy is chosen by exhaustive switch, never by comparing raw strings
// from storage against ad-hoc literals.
type ActionKind string

const (
	KindMove   ActionKind = "move"
	KindRename ActionKind = "rename"
	KindDelete ActionKind = "delete"
)

// Reversible reports whether an action of this kind can be undone.
// Deletes are unrestorable by construction: the content is gone.
func (k ActionKind) Reversible() bool {
	switch k {
	case KindMove, KindRename:
		return true
	case KindDelete:
		return false
	}
	return false
}

// ActionEntry is one durable record of a completed mutation, carrying
// enough information to reverse it. An entry exists if and only if the
// filesystem mutation it describes already succeeded; a crash between
// mutation and append can leave an un-journaled mutation, which is an
// accepted limitation.
type ActionEntry struct {
	ID          int64
	Kind        ActionKind
	Source      string
	Destination string // empty for delete
	CreatedAt   time.Time
	Metadata    string // reserved; currently carries the batch ID of the run
}

// IndexEntry is one row of the file index cache, upserted whenever a file
// is fingerprinted. The filesystem stays authoritative; the index is only
// a cache and is never consulted to decide a mutation.
type IndexEntry struct {
	Path        string
	Fingerprint string
	Size        int64
	ModTime     time.Time
	Type        string
	IndexedAt   time.Time
}

// Store is the durable action journal plus the file index cache. It is the
// only owner of the underlying storage: the FileManager and the undo engine
// go through these operations and never touch the store's files directly.
//
// Append and delete failures must surface to the caller; a failed append
// means the just-performed mutation can no longer be undone, and the caller
// logs that immediately.
type Store interface {
	// AppendAction durably persists one entry and returns its ID. Must only
	// be called after the corresponding filesystem mutation succeeded.
	AppendAction(e ActionEntry) (int64, error)

	// MostRecentActions returns up to n entries, newest first (descending
	// timestamp, ties broken by descending ID). n <= 0 returns all entries.
	// The read is non-destructive; callers that reverse entries remove them
	// explicitly with DeleteActions. History listings use the same call.
	MostRecentActions(n int) ([]ActionEntry, error)

	// DeleteActions removes the given entries from the journal, once they
	// have been reversed or declared unrestorable.
	DeleteActions(ids []int64) error

	// CountActions returns the current journal length.
	CountActions() (int, error)

	// UpsertIndexEntry inserts or refreshes one index cache row, keyed by path.
	UpsertIndexEntry(e IndexEntry) error

	// Close releases the underlying storage.
	Close() error
}

package cacclient

import (
	"sync"
	"time"

	"github.com/vitaliisemenov/cac/pkg/cac"
)

// snapshot is the immutable (document, last-modified) pair a snapshotStore
// hands out to readers. Never mutated in place; a refresh builds a new
// snapshot and swaps the pointer under a brief exclusive lock.
type snapshot struct {
	document     cac.Document
	lastModified time.Time
}

// snapshotStore is an RWMutex-guarded cell holding the current snapshot for
// one tenant. Reads take the read lock and return the pointer directly —
// since a snapshot is never mutated after construction, handing out the
// pointer itself (rather than a deep copy) is safe and wait-free for
// readers beyond the brief lock acquisition. Grounded on the teacher's
// TwoTierAlertCache RWMutex discipline.
type snapshotStore struct {
	mu      sync.RWMutex
	current *snapshot
}

// newSnapshotStore creates a store pre-populated with an initial snapshot.
// The polling client always has one by construction time (spec §4.5:
// construction fails outright if the first fetch fails), so there is no
// empty/unpopulated state to guard against in read().
func newSnapshotStore(doc cac.Document, lastModified time.Time) *snapshotStore {
	return &snapshotStore{current: &snapshot{document: doc, lastModified: lastModified}}
}

// read returns the current snapshot. The returned value is a consistent
// pair: callers never observe a document from one refresh mixed with the
// timestamp from another.
func (s *snapshotStore) read() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// replace atomically installs a new snapshot. Readers that already hold a
// pointer from a prior read() continue to observe the old snapshot; they
// are never retroactively affected by a later replace.
func (s *snapshotStore) replace(doc cac.Document, lastModified time.Time) {
	next := &snapshot{document: doc, lastModified: lastModified}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

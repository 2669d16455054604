package registry

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/source/sourcetest"
)

var enUS = language.MustParse("en-US")
var frFR = language.MustParse("fr-FR")

// Registration is all-or-nothing: a name collision in the same call leaves
// the registry exactly as it was before.
func TestRegisterDuplicateRejectsWholeBatch(t *testing.T) {
	r := New()
	a := sourcetest.New("A")
	if err := r.Register(a); err != nil {
		t.Fatalf("unexpected error registering A: %v", err)
	}

	b := sourcetest.New("B")
	dup := sourcetest.New("A")
	err := r.Register(b, dup)
	if err == nil {
		t.Fatalf("expected duplicate-name error")
	}
	dupErr, ok := err.(*ErrDuplicateSource)
	if !ok {
		t.Fatalf("expected *ErrDuplicateSource, got %T: %v", err, err)
	}
	if dupErr.Name != "A" {
		t.Fatalf("unexpected duplicate name: %q", dupErr.Name)
	}

	snap := r.Lock()
	defer snap.Close()
	if snap.Len() != 1 {
		t.Fatalf("expected registry to still hold exactly 1 source, got %d", snap.Len())
	}
}

// Registering the same name twice within a single call is also rejected.
func TestRegisterDuplicateWithinBatch(t *testing.T) {
	r := New()
	err := r.Register(sourcetest.New("A"), sourcetest.New("A"))
	if err == nil {
		t.Fatalf("expected duplicate-name error within a single batch")
	}

	snap := r.Lock()
	defer snap.Close()
	if snap.Len() != 0 {
		t.Fatalf("expected nothing registered, got %d", snap.Len())
	}
}

// TryLock fails fast, rather than blocking, while a writer holds the
// registry's mutex - the white-box part (locking r.mu directly) is what
// makes this deterministic instead of racing a goroutine's scheduling.
func TestTryLockReportsBorrowViolation(t *testing.T) {
	r := New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.TryLock(); err != ErrBorrowViolation {
		t.Fatalf("expected ErrBorrowViolation while the writer lock is held, got %v", err)
	}
}

// Lock (the blocking path) succeeds once the writer releases.
func TestLockBlocksUntilWriterReleases(t *testing.T) {
	r := New()
	r.mu.Lock()

	unlocked := make(chan struct{})
	go func() {
		r.mu.Unlock()
		close(unlocked)
	}()

	snap := r.Lock()
	defer snap.Close()
	<-unlocked
}

// A Snapshot's candidate index only relies on sources implementing
// ManifestHinter; plain sourcetest.Source (no hints) is always a
// candidate, and CandidatesFor/IsCandidate agree with each other.
func TestSnapshotCandidatesWithoutHints(t *testing.T) {
	r := New()
	a := sourcetest.New("A").Add(enUS, "r0", "x")
	b := sourcetest.New("B")
	if err := r.Register(a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.SetLocales(enUS)

	snap := r.Lock()
	defer snap.Close()

	cands := snap.CandidatesFor(enUS, "r0")
	if len(cands) != 2 {
		t.Fatalf("expected both sources to be candidates absent manifest hints, got %d", len(cands))
	}
	for i := 0; i < snap.Len(); i++ {
		if !snap.IsCandidate(enUS, "r0", i) {
			t.Fatalf("source %d should be a candidate absent a manifest hint", i)
		}
	}
}

// Locales taken by a Snapshot are frozen even if SetLocales runs after.
// SetLocales waits for the write lock, so the snapshot is released first;
// its copy of the chain must not change.
func TestSnapshotFreezesLocales(t *testing.T) {
	r := New()
	r.SetLocales(enUS)

	snap := r.Lock()
	snap.Close()

	r.SetLocales(enUS, frFR)
	if got := len(snap.Locales()); got != 1 {
		t.Fatalf("expected snapshot to keep the chain it was taken with, got %d locales", got)
	}
}

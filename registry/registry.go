// Package registry holds the ordered set of FileSources and the locale
// fallback chain a generator resolves bundles against, and hands out
// Snapshots - consistent, point-in-time views that the solver and bundle
// generators actually read from. Registering sources or changing locales is
// a write; everything downstream of a Snapshot is a read, the way gps's
// SourceMgr separates mutation of its source map from the gateways that
// read through it.
package registry

import (
	"sync"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/source"
)

// Registry is safe for concurrent use. Register and SetLocales take the
// write lock; Lock and TryLock take a read lock and hand back a Snapshot
// that holds it until Close, so registered sources and locales can't shift
// out from under a solve in progress.
type Registry struct {
	mu      sync.RWMutex
	sources []source.FileSource
	names   map[string]int
	locales []language.Tag
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{names: make(map[string]int)}
}

// Register appends sources to the registry, lowest priority first - the
// solver tries the highest-index source first at every row, so the last
// source registered (or the last one in a single Register call) wins ties.
// Registration is all-or-nothing: if any source's Name collides with one
// already registered, or with another source in the same call, nothing is
// added and an *ErrDuplicateSource is returned.
func (r *Registry) Register(sources ...source.FileSource) error {
	if len(sources) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	scratch := make(map[string]int, len(r.names)+len(sources))
	for k, v := range r.names {
		scratch[k] = v
	}
	for _, s := range sources {
		name := s.Name()
		if _, dup := scratch[name]; dup {
			return &ErrDuplicateSource{Name: name}
		}
		scratch[name] = -1
	}

	start := len(r.sources)
	for i, s := range sources {
		scratch[s.Name()] = start + i
	}
	r.sources = append(r.sources, sources...)
	r.names = scratch
	return nil
}

// SetLocales replaces the registry's locale fallback chain, most preferred
// first. It takes effect for any Snapshot taken after it returns; Snapshots
// already outstanding keep the chain they were handed.
func (r *Registry) SetLocales(locales ...language.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]language.Tag, len(locales))
	copy(cp, locales)
	r.locales = cp
}

// Lock blocks until a consistent, point-in-time view of the registry's
// sources and locales is available, then returns it. The caller must call
// Snapshot.Close when done; until then, Register and SetLocales block.
func (r *Registry) Lock() *Snapshot {
	r.mu.RLock()
	return newSnapshot(r)
}

// TryLock is Lock's non-blocking escape hatch: it returns ErrBorrowViolation
// immediately, instead of blocking, if a writer currently holds (or is
// queued for) the registry.
func (r *Registry) TryLock() (*Snapshot, error) {
	if !r.mu.TryRLock() {
		return nil, ErrBorrowViolation
	}
	return newSnapshot(r), nil
}

package registry

import (
	"sync"

	"github.com/armon/go-radix"
	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/source"
)

// Snapshot is a consistent, point-in-time view of a Registry's sources and
// locale chain, held open for as long as Close hasn't been called. Solvers
// and bundle generators read exclusively through a Snapshot, never through
// the Registry directly, so that a solve in progress never sees a source
// appear or disappear mid-search.
type Snapshot struct {
	registry *Registry
	sources  []source.FileSource
	locales  []language.Tag

	mu       sync.Mutex
	byLocale map[string]*localeIndex

	closeOnce sync.Once
}

// localeIndex is the per-locale candidate lookup: tree maps a resource id to
// the registry indices of sources that advertised it via ManifestHinter,
// and universal holds the indices of sources that either don't implement
// ManifestHinter or don't have an opinion for this locale - those are
// always candidates, since the only way to rule them out is to ask.
type localeIndex struct {
	tree      *radix.Tree
	universal []int
}

func newSnapshot(r *Registry) *Snapshot {
	sources := make([]source.FileSource, len(r.sources))
	copy(sources, r.sources)
	locales := make([]language.Tag, len(r.locales))
	copy(locales, r.locales)
	return &Snapshot{registry: r, sources: sources, locales: locales}
}

// Len reports how many sources this snapshot holds.
func (s *Snapshot) Len() int { return len(s.sources) }

// SourceAt returns the source registered at index i, in registration order.
func (s *Snapshot) SourceAt(i int) source.FileSource { return s.sources[i] }

// Locales returns a copy of the locale fallback chain this snapshot was
// taken with, most preferred first.
func (s *Snapshot) Locales() []language.Tag {
	out := make([]language.Tag, len(s.locales))
	copy(out, s.locales)
	return out
}

// FindByName returns the source registered under name, if any.
func (s *Snapshot) FindByName(name string) (source.FileSource, bool) {
	for _, src := range s.sources {
		if src.Name() == name {
			return src, true
		}
	}
	return nil, false
}

// Iter visits every source in registration order, stopping early if fn
// returns false.
func (s *Snapshot) Iter(fn func(i int, src source.FileSource) bool) {
	for i, src := range s.sources {
		if !fn(i, src) {
			return
		}
	}
}

// CandidatesFor returns the sources worth asking about (locale, resID), in
// registration order. A source is a candidate unless a manifest hint
// positively rules it out: sources with no ManifestHinter, or with no hint
// for this locale, are always included, since the only way to know for
// certain is to ask. The solver consumes sources in reverse independently
// (solver.go's solution[0] = width-1); this listing stays in the natural,
// ascending order callers otherwise expect.
func (s *Snapshot) CandidatesFor(locale language.Tag, resID string) []source.FileSource {
	idx := s.indexFor(locale)

	include := make(map[int]bool, len(idx.universal))
	for _, i := range idx.universal {
		include[i] = true
	}
	if v, ok := idx.tree.Get(resID); ok {
		for _, i := range v.([]int) {
			include[i] = true
		}
	}

	out := make([]source.FileSource, 0, len(include))
	for i := 0; i < len(s.sources); i++ {
		if include[i] {
			out = append(out, s.sources[i])
		}
	}
	return out
}

// IsCandidate reports whether the source at registry index i is worth
// asking about (locale, resID) - true unless a manifest hint positively
// rules it out.
func (s *Snapshot) IsCandidate(locale language.Tag, resID string, i int) bool {
	idx := s.indexFor(locale)
	for _, u := range idx.universal {
		if u == i {
			return true
		}
	}
	if v, ok := idx.tree.Get(resID); ok {
		for _, j := range v.([]int) {
			if j == i {
				return true
			}
		}
	}
	return false
}

// indexFor returns the localeIndex for locale, building it on first use.
// Indices are built once per (snapshot, locale) pair and reused for every
// CandidatesFor call against that locale - the registry content behind a
// Snapshot can't change, so the index never goes stale within its lifetime.
func (s *Snapshot) indexFor(locale language.Tag) *localeIndex {
	key := locale.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byLocale == nil {
		s.byLocale = make(map[string]*localeIndex)
	}
	if idx, ok := s.byLocale[key]; ok {
		return idx
	}

	idx := &localeIndex{tree: radix.New()}
	for i, src := range s.sources {
		hinter, ok := src.(source.ManifestHinter)
		if !ok {
			idx.universal = append(idx.universal, i)
			continue
		}
		resIDs, known := hinter.KnownResourceIDs(locale)
		if !known {
			idx.universal = append(idx.universal, i)
			continue
		}
		for _, resID := range resIDs {
			var ids []int
			if v, ok := idx.tree.Get(resID); ok {
				ids = v.([]int)
			}
			idx.tree.Insert(resID, append(ids, i))
		}
	}
	s.byLocale[key] = idx
	return idx
}

// Close releases the read lock this Snapshot holds on its Registry. It is
// safe to call more than once; only the first call has effect.
func (s *Snapshot) Close() {
	s.closeOnce.Do(func() {
		s.registry.mu.RUnlock()
	})
}

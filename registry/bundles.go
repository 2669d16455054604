package registry

import (
	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/bundle"
)

// BundlesSync locks the registry and returns a bundle.Generator that walks
// every locale in the registry's chain, in order, yielding each one's
// solutions. The generator owns the resulting Snapshot and releases it when
// exhausted or Closed.
func (r *Registry) BundlesSync(resIDs []string) *bundle.Generator {
	return bundle.NewGenerator(r.Lock(), resIDs, bundle.SyncFetcher{})
}

// BundlesForLocaleSync is BundlesSync narrowed to a single locale, letting
// a caller skip the fallback chain when it already knows which locale it
// wants.
func (r *Registry) BundlesForLocaleSync(locale language.Tag, resIDs []string) *bundle.Generator {
	snap := r.Lock()
	return bundle.NewGenerator(singleLocaleSnapshot{Snapshot: snap, locale: locale}, resIDs, bundle.SyncFetcher{})
}

// BundlesAsync is BundlesSync's context-aware counterpart; newTester builds
// the solver.AsyncTester each locale's probes are driven through.
func (r *Registry) BundlesAsync(resIDs []string, newTester bundle.AsyncTesterFactory) *bundle.AsyncGenerator {
	return bundle.NewAsyncGenerator(r.Lock(), resIDs, bundle.AsyncFetcher{}, newTester)
}

// BundlesForLocaleAsync is BundlesAsync narrowed to a single locale.
func (r *Registry) BundlesForLocaleAsync(locale language.Tag, resIDs []string, newTester bundle.AsyncTesterFactory) *bundle.AsyncGenerator {
	snap := r.Lock()
	return bundle.NewAsyncGenerator(singleLocaleSnapshot{Snapshot: snap, locale: locale}, resIDs, bundle.AsyncFetcher{}, newTester)
}

// singleLocaleSnapshot narrows a Snapshot's locale chain to exactly one
// locale without copying the underlying source set or candidate index.
type singleLocaleSnapshot struct {
	*Snapshot
	locale language.Tag
}

func (s singleLocaleSnapshot) Locales() []language.Tag { return []language.Tag{s.locale} }

// Package bundle turns a solved assignment of sources into an actual
// localization bundle. It never decides which sources go together - that's
// solver's job, fed candidates through a registry.Snapshot - it only
// assembles the result once the solver hands over a complete, accepted
// candidate.
package bundle

import (
	"context"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/source"
)

// Bundle is the resolved output for one locale: the set of resources the
// solver's winning assignment actually fetched, keyed by resource id.
type Bundle struct {
	Locale    language.Tag
	Resources map[string]*source.Resource
}

// Snapshot is the read-only view of a registered source set that Generator
// and AsyncGenerator drive a solve over. registry.Snapshot satisfies this
// without either package importing the other - registry builds bundle
// Generators, so the dependency can only run one way.
type Snapshot interface {
	Len() int
	SourceAt(i int) source.FileSource
	Locales() []language.Tag
	IsCandidate(locale language.Tag, resID string, i int) bool
	Close()
}

// Collaborator builds a Bundle from a complete assignment: one source per
// requested resource id, already confirmed Present by the solver. The
// resource's actual bytes still need fetching (the solver only proves
// presence, it never reads); that's this collaborator's job too.
type Collaborator interface {
	BuildBundle(locale language.Tag, resIDs []string, sources []source.FileSource) (*Bundle, error)
}

// AsyncCollaborator is the context-aware counterpart, used by AsyncGenerator.
type AsyncCollaborator interface {
	BuildBundleAsync(ctx context.Context, locale language.Tag, resIDs []string, sources []source.FileSource) (*Bundle, error)
}

// SyncFetcher is the default Collaborator: it fetches every resource
// synchronously through FileSource.FetchSync and assembles them in
// resIDs order. A resource whose source unexpectedly returns nil (the
// oracle said Present, the fetch disagreed) produces an error - the solver
// promised these cells were decided.
type SyncFetcher struct{}

func (SyncFetcher) BuildBundle(locale language.Tag, resIDs []string, sources []source.FileSource) (*Bundle, error) {
	resources := make(map[string]*source.Resource, len(resIDs))
	for i, resID := range resIDs {
		res, err := sources[i].FetchSync(locale, resID)
		if err != nil {
			return nil, &ErrFetchFailed{ResID: resID, Source: sources[i].Name(), Err: err}
		}
		if res == nil {
			return nil, &ErrPresenceMismatch{ResID: resID, Source: sources[i].Name()}
		}
		resources[resID] = res
	}
	return &Bundle{Locale: locale, Resources: resources}, nil
}

// AsyncFetcher is the context-aware counterpart, used by AsyncGenerator. It
// fetches every resource through FileSource.FetchAsync sequentially; the
// solver already paid the cost of the speculative probe round-trip, so
// there's no benefit to re-parallelizing the fetch itself and a fair bit of
// complexity in doing so well.
type AsyncFetcher struct{}

func (AsyncFetcher) BuildBundleAsync(ctx context.Context, locale language.Tag, resIDs []string, sources []source.FileSource) (*Bundle, error) {
	resources := make(map[string]*source.Resource, len(resIDs))
	for i, resID := range resIDs {
		res, err := sources[i].FetchAsync(ctx, locale, resID)
		if err != nil {
			return nil, &ErrFetchFailed{ResID: resID, Source: sources[i].Name(), Err: err}
		}
		if res == nil {
			return nil, &ErrPresenceMismatch{ResID: resID, Source: sources[i].Name()}
		}
		resources[resID] = res
	}
	return &Bundle{Locale: locale, Resources: resources}, nil
}

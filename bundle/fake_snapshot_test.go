package bundle_test

import (
	"context"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/bundle"
	"github.com/dminor/l10nregistry-go/source"
	"github.com/dminor/l10nregistry-go/source/sourcetest"
)

// fakeSnapshot is a minimal bundle.Snapshot backed directly by a slice of
// sourcetest.Source, so bundle's generators can be exercised without
// pulling in the registry package (which would be the only caller of
// bundle from outside the module anyway, and bundle must not import it
// back).
type fakeSnapshot struct {
	sources []source.FileSource
	locales []language.Tag
	closed  bool
}

func newFakeSnapshot(locales []language.Tag, sources ...*sourcetest.Source) *fakeSnapshot {
	fs := make([]source.FileSource, len(sources))
	for i, s := range sources {
		fs[i] = s
	}
	return &fakeSnapshot{sources: fs, locales: locales}
}

func newFakeSnapshotRaw(locales []language.Tag, sources ...source.FileSource) *fakeSnapshot {
	return &fakeSnapshot{sources: sources, locales: locales}
}

func (f *fakeSnapshot) Len() int { return len(f.sources) }

func (f *fakeSnapshot) SourceAt(i int) source.FileSource { return f.sources[i] }

// lyingSource claims a resource is Present but returns nothing on fetch -
// scripting the "oracle and fetch disagree" case BuildBundle must reject.
type lyingSource struct{ name string }

func (l lyingSource) Name() string { return l.name }
func (l lyingSource) HasFile(language.Tag, string) source.Presence { return source.Present }
func (l lyingSource) FetchSync(language.Tag, string) (*source.Resource, error) { return nil, nil }
func (l lyingSource) FetchAsync(ctx context.Context, locale language.Tag, resID string) (*source.Resource, error) {
	return l.FetchSync(locale, resID)
}

func (f *fakeSnapshot) Locales() []language.Tag {
	out := make([]language.Tag, len(f.locales))
	copy(out, f.locales)
	return out
}

// IsCandidate: fakeSnapshot carries no manifest hints, so every source is
// always a candidate - the same "no opinion, ask HasFile" default as
// registry.Snapshot for sources without a ManifestHinter.
func (f *fakeSnapshot) IsCandidate(locale language.Tag, resID string, i int) bool { return true }

func (f *fakeSnapshot) Close() { f.closed = true }

var _ bundle.Snapshot = (*fakeSnapshot)(nil)

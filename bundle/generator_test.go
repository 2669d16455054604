package bundle_test

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/bundle"
	"github.com/dminor/l10nregistry-go/source/sourcetest"
)

var enUS = language.MustParse("en-US")

// Sources are tried highest-index-first per row, so B (registered last, at
// index 1) is the first candidate for every resource; A (index 0) is tried
// only after B, so the first bundle takes A's file only where B lacks it.
func newTwoSourceFixture() (a, b *sourcetest.Source) {
	a = sourcetest.New("A").Add(enUS, "r0", "a-r0").Add(enUS, "r1", "a-r1")
	b = sourcetest.New("B").Add(enUS, "r0", "b-r0")
	return a, b
}

func TestGeneratorYieldsEveryAssignmentThenCloses(t *testing.T) {
	a, b := newTwoSourceFixture()
	snap := newFakeSnapshot([]language.Tag{enUS}, a, b)

	g := bundle.NewGenerator(snap, []string{"r0", "r1"}, bundle.SyncFetcher{})

	var got []*bundle.Bundle
	for {
		bnd, ok, err := g.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, bnd)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(got))
	}

	first := got[0]
	if string(first.Resources["r0"].Data) != "b-r0" {
		t.Fatalf("expected first bundle's r0 from B, got %q", first.Resources["r0"].Data)
	}
	if string(first.Resources["r1"].Data) != "a-r1" {
		t.Fatalf("expected first bundle's r1 from A (B lacks it), got %q", first.Resources["r1"].Data)
	}

	second := got[1]
	if string(second.Resources["r0"].Data) != "a-r0" {
		t.Fatalf("expected second bundle's r0 from A, got %q", second.Resources["r0"].Data)
	}

	if !snap.closed {
		t.Fatalf("expected snapshot to be closed once the generator is exhausted")
	}
}

func TestGeneratorClosesSnapshotOnExplicitClose(t *testing.T) {
	a, b := newTwoSourceFixture()
	snap := newFakeSnapshot([]language.Tag{enUS}, a, b)

	g := bundle.NewGenerator(snap, []string{"r0", "r1"}, bundle.SyncFetcher{})
	if _, ok, err := g.Next(); err != nil || !ok {
		t.Fatalf("expected a first bundle, got ok=%v err=%v", ok, err)
	}

	g.Close()
	if !snap.closed {
		t.Fatalf("expected Close to release the snapshot")
	}

	bnd, ok, err := g.Next()
	if err != nil || ok || bnd != nil {
		t.Fatalf("expected a closed generator to yield nothing, got bnd=%v ok=%v err=%v", bnd, ok, err)
	}
}

// A resource no registered source carries exhausts the search cleanly,
// rather than yielding a bundle missing that resource.
func TestGeneratorExhaustsWhenNoSourceHasTheResource(t *testing.T) {
	a := sourcetest.New("A") // no files at all
	snap := newFakeSnapshot([]language.Tag{enUS}, a)

	g := bundle.NewGenerator(snap, []string{"r0"}, bundle.SyncFetcher{})
	_, ok, err := g.Next()
	if ok {
		t.Fatalf("expected no assignment when nothing ever has the resource")
	}
	if err != nil {
		t.Fatalf("expected a clean exhaustion, not an error, got %v", err)
	}
}

// A source whose oracle claims Present but whose fetch comes back empty
// surfaces as a presence mismatch, not a silently incomplete bundle.
func TestGeneratorPresenceMismatchSurfacesAsError(t *testing.T) {
	snap := newFakeSnapshotRaw([]language.Tag{enUS}, lyingSource{name: "L"})

	g := bundle.NewGenerator(snap, []string{"r0"}, bundle.SyncFetcher{})
	_, ok, err := g.Next()
	if ok {
		t.Fatalf("expected no bundle when the fetch disagrees with the oracle")
	}
	if err == nil {
		t.Fatalf("expected a presence-mismatch error")
	}
}

func TestGeneratorAdvancesAcrossLocales(t *testing.T) {
	frFR := language.MustParse("fr-FR")
	a := sourcetest.New("A").Add(enUS, "r0", "en-a").Add(frFR, "r0", "fr-a")
	snap := newFakeSnapshot([]language.Tag{enUS, frFR}, a)

	g := bundle.NewGenerator(snap, []string{"r0"}, bundle.SyncFetcher{})

	first, ok, err := g.Next()
	if err != nil || !ok {
		t.Fatalf("expected en-US bundle, got ok=%v err=%v", ok, err)
	}
	if first.Locale != enUS {
		t.Fatalf("expected first bundle's locale to be en-US, got %v", first.Locale)
	}

	second, ok, err := g.Next()
	if err != nil || !ok {
		t.Fatalf("expected fr-FR bundle, got ok=%v err=%v", ok, err)
	}
	if second.Locale != frFR {
		t.Fatalf("expected second bundle's locale to be fr-FR, got %v", second.Locale)
	}

	if _, ok, _ := g.Next(); ok {
		t.Fatalf("expected exhaustion after both locales are exhausted")
	}
}

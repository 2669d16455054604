package bundle

import (
	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/solver"
	"github.com/dminor/l10nregistry-go/source"
)

// Generator pulls bundles one at a time, locale by locale, from a Snapshot.
// It holds the snapshot open (and thus blocks the registry's writer lock)
// from construction until Close, so callers that intend to iterate slowly
// should still drain or Close it promptly.
//
// For each locale in the snapshot's chain, Generator drives a fresh
// solver.ProblemSolver over every registered source, yielding a Bundle for
// every complete assignment the solver finds before moving to the next
// locale. No bundle is buffered ahead of the caller pulling it.
type Generator struct {
	snap    Snapshot
	resIDs  []string
	collab  Collaborator
	locales []language.Tag

	localeIdx int
	cur       *solver.ProblemSolver
	closed    bool
}

// NewGenerator builds a Generator over snap for resIDs, using collab to
// assemble each winning assignment into a Bundle. The Generator takes
// ownership of snap and closes it when exhausted or when Close is called.
func NewGenerator(snap Snapshot, resIDs []string, collab Collaborator) *Generator {
	return &Generator{
		snap:      snap,
		resIDs:    resIDs,
		collab:    collab,
		locales:   snap.Locales(),
		localeIdx: -1,
	}
}

// Next returns the next Bundle, advancing through the current locale's
// solutions and then through subsequent locales. ok is false once every
// locale's search space is exhausted, at which point the snapshot has
// already been released.
func (g *Generator) Next() (*Bundle, bool, error) {
	if g.closed {
		return nil, false, nil
	}

	for {
		if g.cur == nil {
			if !g.advanceLocale() {
				g.Close()
				return nil, false, nil
			}
		}

		locale := g.locales[g.localeIdx]
		assignment, ok, err := g.cur.Next(resolveFunc(g.snap, locale, g.resIDs))
		if err != nil {
			return nil, false, err
		}
		if !ok {
			g.cur = nil
			continue
		}

		sources := sourcesFor(g.snap, assignment)
		b, err := g.collab.BuildBundle(locale, g.resIDs, sources)
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}
}

// advanceLocale moves to the next locale in the chain and builds a fresh
// solver for it. Returns false once every locale has been tried.
func (g *Generator) advanceLocale() bool {
	g.localeIdx++
	if g.localeIdx >= len(g.locales) {
		return false
	}
	g.cur = solver.New(g.snap.Len(), len(g.resIDs))
	return true
}

// Close releases the underlying snapshot. Safe to call more than once, and
// safe to call on an already-exhausted Generator.
func (g *Generator) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.snap.Close()
}

// sourcesFor maps a solver assignment (one source index per resource row)
// to the actual sources, in resource order.
func sourcesFor(snap Snapshot, assignment []int) []source.FileSource {
	out := make([]source.FileSource, len(assignment))
	for i, srcIdx := range assignment {
		out[i] = snap.SourceAt(srcIdx)
	}
	return out
}

// resolveFunc is the synchronous oracle-then-fetch ResolveFunc shared by
// every locale's solver: consult the snapshot's candidate index first (a
// source a manifest hint has already ruled out for this resID is Absent at
// no cost), then the source's own cheap oracle, and only fetch when both
// come back Unknown.
func resolveFunc(snap Snapshot, locale language.Tag, resIDs []string) solver.ResolveFunc {
	return func(resIdx, srcIdx int) (source.Presence, error) {
		resID := resIDs[resIdx]
		if !snap.IsCandidate(locale, resID, srcIdx) {
			return source.Absent, nil
		}
		src := snap.SourceAt(srcIdx)
		switch src.HasFile(locale, resID) {
		case source.Present:
			return source.Present, nil
		case source.Absent:
			return source.Absent, nil
		default:
			res, err := src.FetchSync(locale, resID)
			if err != nil {
				return source.Unknown, err
			}
			if res == nil {
				return source.Absent, nil
			}
			return source.Present, nil
		}
	}
}

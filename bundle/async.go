package bundle

import (
	"context"

	"github.com/sdboyer/constext"
	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/solver"
	"github.com/dminor/l10nregistry-go/source"
)

// AsyncTesterFactory builds the per-locale solver.AsyncTester a registry's
// sources are probed through - typically one that fans a batch query out
// across FileSource.FetchAsync calls and collects the results.
type AsyncTesterFactory func(snap Snapshot, locale language.Tag, resIDs []string) solver.AsyncTester

// AsyncGenerator is Generator's context-aware counterpart: it drives a
// solver.ParallelProblemSolver per locale instead of a solver.ProblemSolver,
// batching and awaiting probes through an AsyncTester built fresh for each
// locale.
//
// The snapshot's own lock lifetime is folded into every call's context via
// constext.Cons, so canceling either the caller's ctx or the snapshot
// (Close) drops an outstanding probe the same way.
type AsyncGenerator struct {
	snap       Snapshot
	resIDs     []string
	collab     AsyncCollaborator
	newTester  AsyncTesterFactory
	locales    []language.Tag
	snapCtx    context.Context
	snapCancel context.CancelFunc

	localeIdx int
	cur       *solver.ParallelProblemSolver
	closed    bool
}

// NewAsyncGenerator builds an AsyncGenerator over snap for resIDs. newTester
// is invoked once per locale to build the AsyncTester that locale's probes
// go through.
func NewAsyncGenerator(snap Snapshot, resIDs []string, collab AsyncCollaborator, newTester AsyncTesterFactory) *AsyncGenerator {
	snapCtx, cancel := context.WithCancel(context.Background())
	return &AsyncGenerator{
		snap:       snap,
		resIDs:     resIDs,
		collab:     collab,
		newTester:  newTester,
		locales:    snap.Locales(),
		snapCtx:    snapCtx,
		snapCancel: cancel,
		localeIdx:  -1,
	}
}

// Next returns the next Bundle, suspending on ctx (combined with the
// snapshot's own lifetime) while a probe is outstanding. ok is false once
// every locale is exhausted or ctx is done.
func (g *AsyncGenerator) Next(ctx context.Context) (*Bundle, bool, error) {
	if g.closed {
		return nil, false, nil
	}

	joined, joinCancel := constext.Cons(ctx, g.snapCtx)
	defer joinCancel()

	for {
		if g.cur == nil {
			if !g.advanceLocale() {
				g.Close()
				return nil, false, nil
			}
		}

		locale := g.locales[g.localeIdx]
		assignment, ok, err := g.cur.Next(joined)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			g.cur = nil
			continue
		}

		sources := sourcesFor(g.snap, assignment)
		b, err := g.collab.BuildBundleAsync(joined, locale, g.resIDs, sources)
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}
}

func (g *AsyncGenerator) advanceLocale() bool {
	g.localeIdx++
	if g.localeIdx >= len(g.locales) {
		return false
	}
	locale := g.locales[g.localeIdx]
	oracle := oracleFunc(g.snap, locale, g.resIDs)
	tester := g.newTester(g.snap, locale, g.resIDs)
	g.cur = solver.NewParallel(g.snap.Len(), len(g.resIDs), oracle, tester)
	return true
}

// Close releases the underlying snapshot and cancels any probe still
// outstanding against it.
func (g *AsyncGenerator) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.snapCancel()
	g.snap.Close()
}

// oracleFunc is the cheap pre-probe pass shared with the synchronous
// resolveFunc: candidate-index rejection, then each source's own HasFile.
func oracleFunc(snap Snapshot, locale language.Tag, resIDs []string) solver.OracleFunc {
	return func(resIdx, srcIdx int) source.Presence {
		resID := resIDs[resIdx]
		if !snap.IsCandidate(locale, resID, srcIdx) {
			return source.Absent
		}
		return snap.SourceAt(srcIdx).HasFile(locale, resID)
	}
}

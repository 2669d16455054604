package solver

import (
	"context"

	"github.com/dminor/l10nregistry-go/source"
)

// Cell names a single (resource, source) pair to test.
type Cell struct {
	ResIdx    int
	SourceIdx int
}

// TestBatch is the result of probing a batch of Cells: Results has the same
// length and order as the query, entry i true iff the queried source has
// the queried resource for the locale the AsyncTester was built for. Err,
// if non-nil, means the probe itself failed (not "some cells are absent" -
// that's communicated via Results).
type TestBatch struct {
	Results []bool
	Err     error
}

// AsyncTester is the collaborator ParallelProblemSolver batches probes
// through. The returned channel is expected to carry exactly one TestBatch
// and then close, the way a resolved future would.
type AsyncTester interface {
	TestAsync(ctx context.Context, query []Cell) (<-chan TestBatch, error)
}

// OracleFunc is the cheap, non-blocking half of resolution: it reports
// source.Present or source.Absent when a source already knows the answer
// without touching the network, and source.Unknown when the only way to
// find out is a probe. It must never be allowed to block.
type OracleFunc func(resIdx, sourceIdx int) source.Presence

// ParallelProblemSolver wraps a ProblemSolver with an OracleFunc and an
// AsyncTester, replacing the synchronous per-cell resolution of Next with
// optimistic speculation: it consults the oracle for each new cell first
// (same as the synchronous driver would, at no I/O cost), and only when
// the oracle itself is Unknown does it speculate Present and defer to a
// probe. Every still-Unknown cell touched by the resulting complete
// candidate is collected into a single batch and awaited together. At most
// one batch is outstanding at a time.
type ParallelProblemSolver struct {
	*ProblemSolver
	oracle OracleFunc
	tester AsyncTester
}

// NewParallel builds a ParallelProblemSolver for the given dimensions,
// consulting oracle for cheap answers and probing through tester for the
// rest. oracle may be nil, in which case every cell is speculated and
// probed.
func NewParallel(width, depth int, oracle OracleFunc, tester AsyncTester) *ParallelProblemSolver {
	return &ParallelProblemSolver{ProblemSolver: New(width, depth), oracle: oracle, tester: tester}
}

// Next drives the solver to its next assignment. It suspends exactly once
// per speculative candidate, awaiting the outstanding probe; canceling ctx
// (directly, or via a combined context such as constext.Cons binding it to
// a registry snapshot's lock lifetime) drops that probe without mutating
// the cache, so a fresh call can safely re-issue it.
func (p *ParallelProblemSolver) Next(ctx context.Context) (assignment []int, ok bool, err error) {
	if !p.prepareForNext() {
		return nil, false, nil
	}

	for {
		if !p.buildSpeculativeCandidate() {
			return nil, false, nil
		}

		query := p.pendingQuery()
		if len(query) == 0 {
			// Every cell of this candidate is already Present: no probe
			// needed, yield straight away.
			return p.commitYield(), true, nil
		}

		ch, terr := p.tester.TestAsync(ctx, query)
		if terr != nil {
			return nil, false, terr
		}

		var batch TestBatch
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case batch = <-ch:
		}
		if batch.Err != nil {
			return nil, false, batch.Err
		}
		if len(batch.Results) != len(query) {
			return nil, false, &probeShapeError{want: len(query), got: len(batch.Results)}
		}

		firstFalse, hasFalse := p.commitProbe(query, batch.Results)
		if !hasFalse {
			return p.commitYield(), true, nil
		}

		bad := query[firstFalse]
		p.tracer.Absent(bad.ResIdx, bad.ResIdx, bad.SourceIdx)
		p.idx = query[firstFalse].ResIdx
		if !p.retreat() {
			return nil, false, nil
		}
	}
}

// buildSpeculativeCandidate advances rows exactly like the synchronous
// path, consulting the oracle for any cell it hasn't decided yet - that's
// free, so there's no reason to defer it to a probe. Only when the oracle
// itself answers Unknown does it treat the cell as speculatively Present
// and move on without touching the cache. It still retreats for real when
// a cell is (or becomes, via the oracle) known Absent. Returns false if
// the search is exhausted before a complete candidate forms.
func (p *ParallelProblemSolver) buildSpeculativeCandidate() bool {
	for p.idx < p.depth {
		for p.cache[p.idx][p.solution[p.idx]] == source.Unknown && p.oracle != nil {
			if h := p.oracle(p.idx, p.solution[p.idx]); h != source.Unknown {
				p.cache[p.idx][p.solution[p.idx]] = h
			} else {
				break
			}
		}
		if p.cache[p.idx][p.solution[p.idx]] == source.Absent {
			if !p.retreat() {
				return false
			}
			continue
		}
		p.idx++
		if p.idx < p.depth {
			p.solution[p.idx] = p.width - 1
		}
	}
	return true
}

// pendingQuery re-scans the just-built candidate for cells the cache still
// doesn't have an answer for. Present cells need no probing (probe
// minimality: spec guarantees a probe never contains an already-decided
// cell), and by construction of buildSpeculativeCandidate no row in a
// complete candidate can be sitting on an Absent cell.
func (p *ParallelProblemSolver) pendingQuery() []Cell {
	var cells []Cell
	for r := 0; r < p.depth; r++ {
		if p.cache[r][p.solution[r]] == source.Unknown {
			cells = append(cells, Cell{ResIdx: r, SourceIdx: p.solution[r]})
		}
	}
	return cells
}

// commitProbe absorbs a resolved batch: every true result is committed as
// Present first, then the first false result (if any) is committed as
// Absent. Committing every true before acting on the first false is a
// deliberate choice (see DESIGN.md's resolution of the "commit-all vs
// first-false" question) - it keeps useful evidence gathered in the same
// probe instead of discarding it.
func (p *ParallelProblemSolver) commitProbe(query []Cell, results []bool) (firstFalse int, hasFalse bool) {
	firstFalse = -1
	for i, good := range results {
		if good {
			c := query[i]
			p.cache[c.ResIdx][c.SourceIdx] = source.Present
		} else if !hasFalse {
			hasFalse = true
			firstFalse = i
		}
	}
	if hasFalse {
		c := query[firstFalse]
		p.cache[c.ResIdx][c.SourceIdx] = source.Absent
	}
	return firstFalse, hasFalse
}

// commitYield marks the solver dirty (forcing a retreat on the next Next
// call) and returns a defensive copy of the current candidate.
func (p *ParallelProblemSolver) commitYield() []int {
	p.dirty = true
	out := make([]int, p.depth)
	copy(out, p.solution)
	return out
}

type probeShapeError struct{ want, got int }

func (e *probeShapeError) Error() string {
	return "solver: probe result length mismatch"
}

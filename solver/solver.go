// Package solver is the backtracking core of the registry: given a width
// (source count) and depth (resource count), it enumerates every
// assignment of sources to resources that the collaborator's oracle/fetcher
// admits, in reverse lexicographic order, via a three-valued memoization
// cache. ProblemSolver is the synchronous driver; ParallelProblemSolver (in
// parallel.go) wraps it with batched, awaited probing.
package solver

import (
	"github.com/dminor/l10nregistry-go/internal/trace"
	"github.com/dminor/l10nregistry-go/source"
)

// ResolveFunc resolves the Unknown cache cell at (resIdx, sourceIdx) to a
// definite source.Present or source.Absent, or returns an error if the
// underlying fetch failed transiently. It must not return source.Unknown.
type ResolveFunc func(resIdx, sourceIdx int) (source.Presence, error)

// ProblemSolver is a depth-first enumerator over an R (depth) x S (width)
// matrix of resource/source cells. It is constructed once per (width,
// depth) pair and discarded after it has yielded every assignment.
//
// Sources are tried highest-index first at every row (last registered
// wins); rows are filled in ascending order. Combined, a full run yields
// the reverse lexicographic product (S-1..0)^R - see the invariants in
// SPEC_FULL.md §3.
type ProblemSolver struct {
	width, depth int

	cache    [][]source.Presence
	solution []int
	idx      int
	dirty    bool

	tracer *trace.Tracer
}

// SetTracer attaches a trace.Tracer that logs every resolve, retreat, and
// yield as the search proceeds. Passing nil disables tracing; a solver
// without a tracer attached never pays for the (nil-safe) calls beyond a
// single pointer check.
func (s *ProblemSolver) SetTracer(t *trace.Tracer) { s.tracer = t }

// New builds a ProblemSolver for the given width (source count) and depth
// (resource count). A zero width or depth produces a solver that yields no
// assignments at all.
func New(width, depth int) *ProblemSolver {
	s := &ProblemSolver{width: width, depth: depth}
	if width <= 0 || depth <= 0 {
		return s
	}

	s.cache = make([][]source.Presence, depth)
	for r := range s.cache {
		s.cache[r] = make([]source.Presence, width)
	}
	s.solution = make([]int, depth)
	s.solution[0] = width - 1
	return s
}

// Width and Depth report the dimensions this solver was built for.
func (s *ProblemSolver) Width() int { return s.width }
func (s *ProblemSolver) Depth() int { return s.depth }

// exhausted reports whether the search has no more assignments to try -
// either it never had any (zero width/depth) or idx has underflowed past
// row 0 during backtracking.
func (s *ProblemSolver) exhausted() bool {
	return s.width <= 0 || s.depth <= 0 || s.idx < 0
}

// Next returns the next complete assignment in reverse lexicographic
// order, or ok=false once the search is exhausted. A non-nil err indicates
// resolve reported a transient failure for the cell at the returned
// indices; the cache entry stays Unknown and the solver's position is
// otherwise untouched, so calling Next again retries the identical cell.
func (s *ProblemSolver) Next(resolve ResolveFunc) (assignment []int, ok bool, err error) {
	if !s.prepareForNext() {
		return nil, false, nil
	}

	for s.idx < s.depth {
		for s.cache[s.idx][s.solution[s.idx]] == source.Absent {
			if !s.retreat() {
				s.tracer.Exhausted()
				return nil, false, nil
			}
		}

		cell := s.cache[s.idx][s.solution[s.idx]]
		if cell == source.Unknown {
			resIdx, srcIdx := s.idx, s.solution[s.idx]
			s.tracer.Resolve(s.idx, resIdx, srcIdx)
			p, rerr := resolve(resIdx, srcIdx)
			if rerr != nil {
				return nil, false, &FetchError{ResIdx: resIdx, SourceIdx: srcIdx, Err: rerr}
			}
			s.cache[resIdx][srcIdx] = p
			if p == source.Present {
				s.tracer.Present(s.idx, resIdx, srcIdx)
			} else {
				s.tracer.Absent(s.idx, resIdx, srcIdx)
			}
			continue
		}

		// cell == source.Present
		s.idx++
		if s.idx < s.depth {
			s.solution[s.idx] = s.width - 1
		}
	}

	s.dirty = true
	out := make([]int, s.depth)
	copy(out, s.solution)
	s.tracer.Yield(out)
	return out, true, nil
}

// prepareForNext handles the "we just yielded, retreat before trying
// again" housekeeping shared by the synchronous and asynchronous drivers.
// Returns false if the search is (or turns out to be) exhausted.
func (s *ProblemSolver) prepareForNext() bool {
	if s.exhausted() {
		return false
	}
	if s.dirty {
		s.idx = s.depth - 1
		if !s.retreat() {
			return false
		}
		s.dirty = false
	}
	return true
}

// retreat decrements the source tried at the current row; if that
// underflows, it steps back a row and keeps decrementing there (rows
// skipped over this way are implicitly reset to width-1 the next time the
// search advances into them). Returns false
// once row 0 itself underflows, meaning the search is exhausted.
func (s *ProblemSolver) retreat() bool {
	s.tracer.Retreat(s.idx, s.idx, s.solution[s.idx])
	s.solution[s.idx]--
	for s.solution[s.idx] < 0 {
		s.idx--
		if s.idx < 0 {
			return false
		}
		s.solution[s.idx]--
	}
	return true
}

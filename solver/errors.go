package solver

import "github.com/pkg/errors"

// FetchError wraps a transient I/O failure from a FileSource's fetcher,
// surfaced to the caller of ProblemSolver.Next with the cache entry for the
// cell left Unknown - same row and source will be retried verbatim on the
// next call, since nothing about the search state advanced.
type FetchError struct {
	ResIdx    int
	SourceIdx int
	Err       error
}

func (e *FetchError) Error() string {
	return errors.Wrapf(e.Err, "fetch failed for resource %d at source %d", e.ResIdx, e.SourceIdx).Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrProbeFailed names the case where an async probe resolves a cell to
// absent. ParallelProblemSolver.commitProbe absorbs that outcome itself,
// writing source.Absent to the cache directly rather than constructing or
// returning this type; it is exported as the spec's error-taxonomy
// placeholder for that case, not currently wired into any code path.
type ErrProbeFailed struct {
	ResIdx int
}

func (e *ErrProbeFailed) Error() string {
	return errors.Errorf("probe reported resource %d absent", e.ResIdx).Error()
}

package bundle

import "github.com/pkg/errors"

// ErrFetchFailed wraps a collaborator's transient failure to read a
// resource the solver already proved present.
type ErrFetchFailed struct {
	ResID  string
	Source string
	Err    error
}

func (e *ErrFetchFailed) Error() string {
	return errors.Wrapf(e.Err, "fetching %q from %q", e.ResID, e.Source).Error()
}

func (e *ErrFetchFailed) Unwrap() error { return e.Err }

// ErrPresenceMismatch means a source's oracle claimed a resource was
// Present but its fetch came back empty - a collaborator bug, since
// FileSource.HasFile and FetchSync/FetchAsync are required to agree.
type ErrPresenceMismatch struct {
	ResID  string
	Source string
}

func (e *ErrPresenceMismatch) Error() string {
	return errors.Errorf("source %q reported %q present but fetch returned nothing", e.Source, e.ResID).Error()
}

package registry

import "github.com/pkg/errors"

// ErrDuplicateSource is returned by Register when a source's name collides
// with one already registered, or with another source in the same call.
// Registration is all-or-nothing: no source from that call is added.
type ErrDuplicateSource struct {
	Name string
}

func (e *ErrDuplicateSource) Error() string {
	return errors.Errorf("registry: source %q already registered", e.Name).Error()
}

// ErrBorrowViolation is returned by TryLock when the registry is already
// held for writing (or a writer is waiting for it - TryRLock does not jump
// ahead of a queued writer) and the caller asked not to block for it.
var ErrBorrowViolation = errors.New("registry: could not acquire a read lock without blocking")

// Package trace renders a solver run as an indented, glyph-prefixed log,
// generalizing the dependency-solving trace gps's solver writes (see
// trace.go there) to resource/source resolution: ✓ a cell resolved
// present, ✗ a cell resolved absent, ← a retreat.
package trace

import (
	"fmt"
	"log"
	"strings"
)

const (
	successChar = "✓"
	failChar    = "✗"
	backChar    = "←"
)

// Sink is the minimal logging surface a Tracer writes through - satisfied
// directly by *log.Logger.
type Sink interface {
	Printf(format string, args ...interface{})
}

// Tracer renders depth-indented trace lines for one solve run. A nil
// *Tracer (or one built with a nil Sink) is a safe no-op, so call sites
// don't need to guard every call with an enabled check.
type Tracer struct {
	sink Sink
}

// New builds a Tracer writing to sink. Passing a nil sink yields a no-op
// Tracer.
func New(sink Sink) *Tracer {
	return &Tracer{sink: sink}
}

// NewDefault builds a Tracer writing to the standard library's default
// logger semantics (log.Default()).
func NewDefault() *Tracer {
	return &Tracer{sink: log.Default()}
}

func (t *Tracer) enabled() bool { return t != nil && t.sink != nil }

func (t *Tracer) printf(depth int, format string, args ...interface{}) {
	prefix := strings.Repeat("| ", depth)
	t.sink.Printf("%s"+format, append([]interface{}{prefix}, args...)...)
}

// Resolve logs that (resIdx, sourceIdx) was just asked about at the given
// search depth, before the answer is known.
func (t *Tracer) Resolve(depth, resIdx, sourceIdx int) {
	if !t.enabled() {
		return
	}
	t.printf(depth, "? resource %d at source %d\n", resIdx, sourceIdx)
}

// Present logs that (resIdx, sourceIdx) resolved to present.
func (t *Tracer) Present(depth, resIdx, sourceIdx int) {
	if !t.enabled() {
		return
	}
	t.printf(depth, "%s resource %d present at source %d\n", successChar, resIdx, sourceIdx)
}

// Absent logs that (resIdx, sourceIdx) resolved to absent.
func (t *Tracer) Absent(depth, resIdx, sourceIdx int) {
	if !t.enabled() {
		return
	}
	t.printf(depth, "%s resource %d absent at source %d\n", failChar, resIdx, sourceIdx)
}

// Retreat logs a backtrack step away from (resIdx, sourceIdx).
func (t *Tracer) Retreat(depth, resIdx, sourceIdx int) {
	if !t.enabled() {
		return
	}
	t.printf(depth, "%s retreat from resource %d, source %d\n", backChar, resIdx, sourceIdx)
}

// Yield logs a complete, accepted assignment.
func (t *Tracer) Yield(assignment []int) {
	if !t.enabled() {
		return
	}
	t.sink.Printf("%s yield %v\n", successChar, assignment)
}

// Exhausted logs that a solve's search space has been fully consumed.
func (t *Tracer) Exhausted() {
	if !t.enabled() {
		return
	}
	t.sink.Printf("%s exhausted\n", fmt.Sprint(failChar))
}

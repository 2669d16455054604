package solver_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/dminor/l10nregistry-go/internal/trace"
	"github.com/dminor/l10nregistry-go/solver"
	"github.com/dminor/l10nregistry-go/source"
)

// Attaching a tracer adds glyph-prefixed log output to a run that still
// yields its assignment; a Tracer with a nil Sink must run as a no-op.
func TestTraceOutputsGlyphs(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.New(log.New(&buf, "", 0))

	s := solver.New(2, 1)
	s.SetTracer(tr)

	_, ok, err := s.Next(func(resIdx, srcIdx int) (source.Presence, error) {
		if srcIdx == 1 {
			return source.Present, nil
		}
		return source.Absent, nil
	})
	if err != nil || !ok {
		t.Fatalf("unexpected result: ok=%v err=%v", ok, err)
	}

	out := buf.String()
	if !strings.Contains(out, "✓") {
		t.Fatalf("expected a success glyph in trace output, got: %q", out)
	}
}

func TestTraceNilSinkIsNoop(t *testing.T) {
	s := solver.New(1, 1)
	s.SetTracer(trace.New(nil))

	_, ok, err := s.Next(func(int, int) (source.Presence, error) {
		return source.Present, nil
	})
	if err != nil || !ok {
		t.Fatalf("unexpected result: ok=%v err=%v", ok, err)
	}
}

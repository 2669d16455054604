// Package sourcetest provides an in-memory FileSource fake for exercising
// the registry and solver without touching a filesystem, plus a scriptable
// AsyncTester for driving solver.ParallelProblemSolver in tests. It plays
// the same role the teacher's fakeSourceMgr does for gps's solver tests.
package sourcetest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/solver"
	"github.com/dminor/l10nregistry-go/source"
)

// Source is an in-memory FileSource. Files are keyed by (locale tag, res
// id); presence for a (locale, res id) pair not found in files is Absent
// unless the pair is listed in unknown, in which case HasFile reports
// Unknown until a fetch resolves it (simulating an oracle that hasn't
// consulted the real backing store yet).
type Source struct {
	name string

	mu      sync.Mutex
	files   map[key][]byte
	unknown map[key]bool
	fetches int
}

type key struct {
	locale string
	resID  string
}

// New builds a Source with the given name and no files.
func New(name string) *Source {
	return &Source{
		name:    name,
		files:   make(map[key][]byte),
		unknown: make(map[key]bool),
	}
}

// Add registers a file as present for locale/resID, with the given body.
func (s *Source) Add(locale language.Tag, resID string, body string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key{locale.String(), resID}] = []byte(body)
	return s
}

// MarkUnknown forces HasFile to report source.Unknown for locale/resID
// until a fetch is performed, regardless of whether the file is present.
// Used to script the async driver's speculate-then-probe behavior.
func (s *Source) MarkUnknown(locale language.Tag, resID string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unknown[key{locale.String(), resID}] = true
	return s
}

func (s *Source) Name() string { return s.name }

// Contains reports ground truth - whether locale/resID is actually in this
// source's file set - bypassing any MarkUnknown override. It is what a
// truthful AsyncTester consults to answer a probe; HasFile is what the
// solver's cheap oracle path sees, and the two are allowed to diverge on
// purpose so tests can script "oracle doesn't know yet" scenarios.
func (s *Source) Contains(locale language.Tag, resID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[key{locale.String(), resID}]
	return ok
}

func (s *Source) HasFile(locale language.Tag, resID string) source.Presence {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{locale.String(), resID}
	if s.unknown[k] {
		return source.Unknown
	}
	if _, ok := s.files[k]; ok {
		return source.Present
	}
	return source.Absent
}

func (s *Source) FetchSync(locale language.Tag, resID string) (*source.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	k := key{locale.String(), resID}
	delete(s.unknown, k)
	body, ok := s.files[k]
	if !ok {
		return nil, nil
	}
	return &source.Resource{Locale: locale, ResID: resID, Data: body}, nil
}

func (s *Source) FetchAsync(ctx context.Context, locale language.Tag, resID string) (*source.Resource, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.FetchSync(locale, resID)
}

// Fetches reports how many times FetchSync/FetchAsync resolved against
// this source, for asserting probe/fetch minimality in tests.
func (s *Source) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// Tester is a scriptable solver.AsyncTester backed by a set of sources,
// truthful with respect to their actual file contents: it answers a batch
// query by consulting each named source's real files, the way a real async
// collaborator would, modulo the channel/goroutine plumbing a live network
// client needs and this fake doesn't.
type Tester struct {
	Locale  language.Tag
	ResIDs  []string
	Sources []*Source

	mu    sync.Mutex
	calls [][]solver.Cell
}

// TestAsync answers a batch of (resource index, source index) queries by
// checking each referenced source's actual files. The channel is buffered
// so the call never blocks the caller; a context is honored before the
// (instant, in this fake) "work" is done.
func (t *Tester) TestAsync(ctx context.Context, query []solver.Cell) (<-chan solver.TestBatch, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.mu.Lock()
	recorded := make([]solver.Cell, len(query))
	copy(recorded, query)
	t.calls = append(t.calls, recorded)
	t.mu.Unlock()

	out := make(chan solver.TestBatch, 1)
	results := make([]bool, len(query))
	for i, c := range query {
		if c.SourceIdx < 0 || c.SourceIdx >= len(t.Sources) {
			out <- solver.TestBatch{Err: fmt.Errorf("sourcetest: source index %d out of range", c.SourceIdx)}
			close(out)
			return out, nil
		}
		if c.ResIdx < 0 || c.ResIdx >= len(t.ResIDs) {
			out <- solver.TestBatch{Err: fmt.Errorf("sourcetest: resource index %d out of range", c.ResIdx)}
			close(out)
			return out, nil
		}
		src := t.Sources[c.SourceIdx]
		results[i] = src.Contains(t.Locale, t.ResIDs[c.ResIdx])
	}
	out <- solver.TestBatch{Results: results}
	close(out)
	return out, nil
}

// Queries returns every query batch issued so far, for asserting probe
// minimality (spec §8: never probe a cell already Present or Absent).
func (t *Tester) Queries() [][]solver.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]solver.Cell, len(t.calls))
	copy(out, t.calls)
	return out
}

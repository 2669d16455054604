// Package source defines the collaborator interface the solver queries:
// a FileSource knows, for a given locale and resource id, whether it has
// the file and how to fetch it. File I/O, parsing, and bundle assembly are
// the collaborator's business; the solver only ever sees Presence values.
package source

import (
	"context"

	"golang.org/x/text/language"
)

// Presence is the three-valued result of asking a source whether it has a
// file. Unknown is load-bearing: it is what lets the async driver tell
// "haven't asked yet" apart from "asked, and it's not there", which is what
// makes batched probing possible. Never collapse this to a bool.
type Presence int

const (
	Unknown Presence = iota
	Present
	Absent
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Resource is the opaque payload a FileSource hands back on a successful
// fetch. The registry core never looks inside it; parsing and bundle
// assembly are a collaborator's concern.
type Resource struct {
	Locale language.Tag
	ResID  string
	Data   []byte
}

// FileSource is a named, queryable provider of localized resources.
// Equality between two FileSources is by Name; the registry rejects
// registering two sources that share a name.
type FileSource interface {
	// Name identifies the source. Unique within a Registry.
	Name() string

	// HasFile is the cheap oracle: it may consult a manifest or an
	// internal cache, and must never block on network or disk I/O long
	// enough to matter. Its answer must stay consistent with FetchSync/
	// FetchAsync - if it claims Present, a fetch for the same (locale,
	// resID) must not come back empty.
	HasFile(locale language.Tag, resID string) Presence

	// FetchSync retrieves the resource, blocking the caller. A resource
	// that doesn't exist returns (nil, nil), not an error; only transient
	// I/O failures are errors.
	FetchSync(locale language.Tag, resID string) (*Resource, error)

	// FetchAsync is the non-blocking counterpart, cancellable via ctx.
	FetchAsync(ctx context.Context, locale language.Tag, resID string) (*Resource, error)
}

// ManifestHinter is an optional extension a FileSource may implement to let
// callers (registry.Snapshot, specifically) build a prefix index over the
// resource ids it is known to carry for a locale, rather than probing
// HasFile once per candidate resource id. When it answers for a locale, a
// resource id missing from its list is treated as Absent for this source
// without HasFile being consulted, so the list must agree with HasFile.
type ManifestHinter interface {
	// KnownResourceIDs returns the resource ids this source's manifest
	// claims to carry for locale, or (nil, false) if it has no manifest
	// hint for that locale.
	KnownResourceIDs(locale language.Tag) ([]string, bool)
}

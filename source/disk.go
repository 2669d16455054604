package source

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/termie/go-shutil"
	"github.com/theckman/go-flock"
	"golang.org/x/text/language"
)

// DiskFileSource is a FileSource backed by a directory tree of the shape
// <root>/<locale>/<resID>. It builds a presence manifest once, lazily, by
// walking root with godirwalk; a manifest.toml at root's top level can
// override that walk for locales it lists explicitly, the way a
// precomputed index lets a caller skip a directory walk it already knows
// the answer to.
//
// A DiskFileSource is safe for concurrent use.
type DiskFileSource struct {
	name string
	root string

	once     sync.Once
	buildMu  sync.RWMutex
	byLocale map[string]map[string]bool // locale tag string -> known resIDs
	buildErr error
}

// NewDiskFileSource builds a DiskFileSource named name, rooted at root. The
// directory is not walked until the source is first queried.
func NewDiskFileSource(name, root string) *DiskFileSource {
	return &DiskFileSource{name: name, root: root}
}

func (d *DiskFileSource) Name() string { return d.name }

// manifestLockPath is the advisory lock serializing manifest builds, so two
// DiskFileSources (in different processes) pointed at the same root build
// their in-memory manifests one at a time. A build only reads manifest.toml
// and the directory tree; it never writes manifest.toml.
func (d *DiskFileSource) manifestLockPath() string {
	return filepath.Join(d.root, ".l10nregistry-manifest.lock")
}

func (d *DiskFileSource) manifestTomlPath() string {
	return filepath.Join(d.root, "manifest.toml")
}

// ensureManifest builds the presence manifest exactly once per
// DiskFileSource instance.
func (d *DiskFileSource) ensureManifest() error {
	d.once.Do(func() {
		d.buildErr = d.buildManifest()
	})
	return d.buildErr
}

func (d *DiskFileSource) buildManifest() error {
	fl := flock.NewFlock(d.manifestLockPath())
	if err := fl.Lock(); err != nil {
		return errors.Wrapf(err, "locking manifest for %s", d.root)
	}
	defer fl.Unlock()

	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	byLocale := make(map[string]map[string]bool)
	if hinted, err := d.loadManifestToml(); err == nil && hinted != nil {
		byLocale = hinted
	} else if err != nil {
		return err
	}

	if err := d.walkMissingLocales(byLocale); err != nil {
		return err
	}

	d.byLocale = byLocale
	return nil
}

// loadManifestToml reads manifest.toml, if present, into a locale ->
// resIDs map. manifest.toml is expected to carry a top-level "locales"
// table mapping each known-complete locale to the array of resource ids
// it carries, e.g.:
//
//	[locales]
//	"en-US" = ["menu.ftl", "errors.ftl"]
//
// A missing file is not an error; it just means every locale falls back
// to a directory walk.
func (d *DiskFileSource) loadManifestToml() (map[string]map[string]bool, error) {
	path := d.manifestTomlPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}

	raw, ok := tree.Get("locales").(*toml.Tree)
	if !ok {
		return map[string]map[string]bool{}, nil
	}

	out := make(map[string]map[string]bool)
	for _, locale := range raw.Keys() {
		items, ok := raw.Get(locale).([]interface{})
		if !ok {
			continue
		}
		resIDs := make(map[string]bool, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				resIDs[s] = true
			}
		}
		out[locale] = resIDs
	}
	return out, nil
}

// walkMissingLocales fills in byLocale for every locale directory under
// root that manifest.toml didn't already cover, by walking it recursively
// once via godirwalk and recording each file's slash-separated path
// relative to the locale directory.
func (d *DiskFileSource) walkMissingLocales(byLocale map[string]map[string]bool) error {
	entries, err := ioutil.ReadDir(d.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading %s", d.root)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		locale := e.Name()
		if _, already := byLocale[locale]; already {
			continue
		}

		resIDs := make(map[string]bool)
		localeDir := filepath.Join(d.root, locale)
		err := godirwalk.Walk(localeDir, &godirwalk.Options{
			Unsorted: true,
			Callback: func(osPathname string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					return nil
				}
				rel, err := filepath.Rel(localeDir, osPathname)
				if err != nil {
					return err
				}
				resIDs[filepath.ToSlash(rel)] = true
				return nil
			},
		})
		if err != nil {
			return errors.Wrapf(err, "walking %s", localeDir)
		}
		byLocale[locale] = resIDs
	}
	return nil
}

// HasFile is the cheap oracle: once the manifest is built, membership is a
// single map lookup, no I/O. A locale the manifest never saw (no such
// directory existed at build time) reports Absent rather than Unknown -
// the manifest is authoritative over the full locale set, since it is
// built from the same directory FetchSync reads from.
func (d *DiskFileSource) HasFile(locale language.Tag, resID string) Presence {
	if err := d.ensureManifest(); err != nil {
		return Unknown
	}
	d.buildMu.RLock()
	defer d.buildMu.RUnlock()

	resIDs, ok := d.byLocale[locale.String()]
	if !ok {
		return Absent
	}
	if resIDs[resID] {
		return Present
	}
	return Absent
}

// KnownResourceIDs implements ManifestHinter: once built, the manifest
// knows every resID under every locale directory it walked (or that
// manifest.toml listed explicitly), and answers for each of those locales.
// For a locale it never saw, or when the manifest failed to build, it
// returns (nil, false).
func (d *DiskFileSource) KnownResourceIDs(locale language.Tag) ([]string, bool) {
	if err := d.ensureManifest(); err != nil {
		return nil, false
	}
	d.buildMu.RLock()
	defer d.buildMu.RUnlock()

	resIDs, ok := d.byLocale[locale.String()]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(resIDs))
	for id := range resIDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, true
}

// FetchSync reads the resource at <root>/<locale>/<resID>. The file is
// first materialized through go-shutil's Copy into a temporary path - the
// same collaborator the teacher passes as vcs_source.go's CopyTreeOptions.
// CopyFunction to copy a cached dependency into a project's vendor tree -
// and then read back, rather than opened directly, so a fetch always goes
// through the same copy path a caller populating a local cache from this
// source would use.
func (d *DiskFileSource) FetchSync(locale language.Tag, resID string) (*Resource, error) {
	src := filepath.Join(d.root, locale.String(), resID)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "stat %s", src)
	}

	tmp, err := ioutil.TempFile("", "l10nregistry-fetch-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating fetch temp file")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := shutil.Copy(src, tmpPath, true); err != nil {
		return nil, errors.Wrapf(err, "copying %s", src)
	}

	data, err := ioutil.ReadFile(tmpPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fetched copy of %s", src)
	}
	return &Resource{Locale: locale, ResID: resID, Data: data}, nil
}

// FetchAsync honors ctx before doing the (synchronous, local-disk) fetch
// work; there is no actual asynchronous disk I/O to hand off to, the same
// tradeoff sourcetest.Source's fake makes for the same reason.
func (d *DiskFileSource) FetchAsync(ctx context.Context, locale language.Tag, resID string) (*Resource, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return d.FetchSync(locale, resID)
}

var (
	_ FileSource     = (*DiskFileSource)(nil)
	_ ManifestHinter = (*DiskFileSource)(nil)
)

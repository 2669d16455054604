// Command l10nprobe is a small smoke-test CLI over the registry: point it
// at one or more directory trees and a list of resource ids, and for every
// bundle resolved across the given locale chain it prints the locale and
// the size in bytes of each resource. It does not name the source each
// resource came from. It exists to
// exercise source.DiskFileSource end to end; it is not part of the
// resolution core itself.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/dminor/l10nregistry-go/registry"
	"github.com/dminor/l10nregistry-go/source"
)

func main() {
	var (
		roots   = flag.String("roots", "", "comma-separated list of source root directories")
		locales = flag.String("locales", "en-US", "comma-separated locale fallback chain, most preferred first")
		resIDs  = flag.String("res", "", "comma-separated resource ids to resolve")
		verbose = flag.Bool("v", false, "separate printed bundles with a blank line (candidate sources are not listed)")
	)
	flag.Parse()

	if err := run(*roots, *locales, *resIDs, *verbose, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "l10nprobe:", err)
		os.Exit(1)
	}
}

func run(rootsArg, localesArg, resIDsArg string, verbose bool, out io.Writer) error {
	if rootsArg == "" {
		return fmt.Errorf("-roots is required")
	}
	if resIDsArg == "" {
		return fmt.Errorf("-res is required")
	}

	r := registry.New()
	for _, root := range splitNonEmpty(rootsArg, ",") {
		name := filepath.Base(filepath.Clean(root))
		if err := r.Register(source.NewDiskFileSource(name, root)); err != nil {
			return err
		}
	}

	var locales []language.Tag
	for _, tag := range splitNonEmpty(localesArg, ",") {
		parsed, err := language.Parse(tag)
		if err != nil {
			return fmt.Errorf("parsing locale %q: %w", tag, err)
		}
		locales = append(locales, parsed)
	}
	r.SetLocales(locales...)

	resIDs := splitNonEmpty(resIDsArg, ",")

	gen := r.BundlesSync(resIDs)
	defer gen.Close()

	count := 0
	for {
		bundle, ok, err := gen.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		count++
		fmt.Fprintf(out, "locale %s:\n", bundle.Locale)
		for _, resID := range resIDs {
			res, found := bundle.Resources[resID]
			if !found {
				fmt.Fprintf(out, "  %s: (missing)\n", resID)
				continue
			}
			fmt.Fprintf(out, "  %s: %d bytes\n", resID, len(res.Data))
		}
		if verbose {
			fmt.Fprintln(out)
		}
	}

	if count == 0 {
		fmt.Fprintln(out, "no bundle could be resolved for any configured locale")
	}
	return nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are used when Find is given none.
var DefaultExtensions = []string{"png"}

// Find lists the images of id in dir: first "<id>.<ext>", then every
// "<id>_*.<ext>" in name order. Extensions compare case-insensitively and
// files resolving to the same path are returned once. A missing dir
// yields no images.
func Find(dir string, id ID, exts ...string) ([]string, error) {
	allowed := extensionSet(exts)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	key := id.String()
	var primary, secondary []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !allowed[normalizeExt(ext)] {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		switch {
		case stem == key:
			primary = append(primary, name)
		case strings.HasPrefix(stem, key+"_"):
			secondary = append(secondary, name)
		}
	}
	sort.Strings(primary)
	sort.Strings(secondary)

	var out []string
	seen := make(map[string]bool)
	for _, name := range append(primary, secondary...) {
		p := filepath.Join(dir, name)
		resolved := resolve(p)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		out = append(out, p)
	}
	return out, nil
}

// HasExtension reports whether name ends in one of exts, or in one of
// DefaultExtensions when exts is empty. The match ignores case.
func HasExtension(name string, exts ...string) bool {
	return extensionSet(exts)[normalizeExt(filepath.Ext(name))]
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[normalizeExt(e)] = true
	}
	return set
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func resolve(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if real, err := filepath.EvalSymlinks(p); err == nil {
		return real
	}
	return p
}

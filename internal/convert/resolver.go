package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownPackage is returned for package:// references to unmapped packages.
var ErrUnknownPackage = errors.New("unknown package")

// Resolver turns file references written in a robot description into
// absolute paths.
type Resolver struct {
	// BaseDir is the directory of the description; relative paths start here.
	BaseDir string
	// Packages maps package names to their directories.
	Packages map[string]string
}

// Resolve supports package://, file:// and plain paths.
func (r *Resolver) Resolve(ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "package://"):
		rest := strings.TrimPrefix(ref, "package://")
		name, sub, _ := strings.Cut(rest, "/")
		dir, ok := r.Packages[name]
		if !ok {
			return "", fmt.Errorf("%w: %q in %s", ErrUnknownPackage, name, ref)
		}
		return r.abs(filepath.Join(dir, filepath.FromSlash(sub)))
	case strings.HasPrefix(ref, "file://"):
		return r.abs(filepath.FromSlash(strings.TrimPrefix(ref, "file://")))
	}
	return r.abs(filepath.FromSlash(ref))
}

func (r *Resolver) abs(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.BaseDir, p)
	}
	return filepath.Abs(p)
}

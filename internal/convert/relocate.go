package convert

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNoCommonAncestor is returned when the texture paths share no usable directory.
	ErrNoCommonAncestor = errors.New("no common ancestor directory")
	// ErrNonLocalDir is returned when an output directory would leave the output tree.
	ErrNonLocalDir = errors.New("directory is not inside the output tree")
)

// RelocateOptions control Relocate.
type RelocateOptions struct {
	// RejectRootAncestor fails when the only shared directory is the
	// filesystem root.
	RejectRootAncestor bool
}

// Relocation is the result of Relocate.
type Relocation struct {
	// Ancestor is the deepest directory containing every texture.
	Ancestor string
	// Models are the input models with texture references rewritten.
	Models map[string]string
	// Copies maps each absolute source texture to its destinations,
	// relative to the output directory and slash separated.
	Copies map[string]PathSet
}

// Relocate moves every texture below relTexDir, keeping its path relative to
// the common ancestor of all textures, and rewrites the references in each
// link's model, which lives in relModelDir/<link>, to relative paths.
// Both directories must be local: relative and free of leading "..".
// The input maps are not modified.
func Relocate(relModelDir, relTexDir string, texturesByLink map[string]PathSet, modelsByLink map[string]string, opts RelocateOptions) (*Relocation, error) {
	for _, dir := range []string{relModelDir, relTexDir} {
		if !filepath.IsLocal(dir) {
			return nil, fmt.Errorf("%w: %q", ErrNonLocalDir, dir)
		}
	}
	all := PathSet{}
	for _, set := range texturesByLink {
		all.Union(set)
	}
	ancestor, err := CommonAncestor(all.Sorted())
	if err != nil {
		return nil, err
	}
	if opts.RejectRootAncestor && isRoot(ancestor) {
		return nil, fmt.Errorf("%w: textures only share %s", ErrNoCommonAncestor, ancestor)
	}

	dest := make(map[string]string, len(all))
	for t := range all {
		rel, err := filepath.Rel(ancestor, t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCommonAncestor, err)
		}
		dest[t] = path.Join(filepath.ToSlash(relTexDir), filepath.ToSlash(rel))
	}

	r := &Relocation{
		Ancestor: ancestor,
		Models:   make(map[string]string, len(modelsByLink)),
		Copies:   make(map[string]PathSet, len(all)),
	}
	for link, content := range modelsByLink {
		modelDir := path.Join(filepath.ToSlash(relModelDir), link)
		// Longest first, so a path is never rewritten through a shorter one.
		refs := texturesByLink[link].Sorted()
		sort.SliceStable(refs, func(i, j int) bool { return len(refs[i]) > len(refs[j]) })
		for _, t := range refs {
			content = replaceReference(content, t, RelativePath(modelDir, dest[t]))
		}
		r.Models[link] = content
	}
	for t, d := range dest {
		r.Copies[t] = NewPathSet(d)
	}
	return r, nil
}

// CommonAncestor returns the deepest directory containing every path.
// All paths must be absolute and on the same volume.
func CommonAncestor(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no texture paths", ErrNoCommonAncestor)
	}

	volume := filepath.VolumeName(paths[0])
	var common []string
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			return "", fmt.Errorf("%w: %q is not absolute", ErrNoCommonAncestor, p)
		}
		if !strings.EqualFold(filepath.VolumeName(p), volume) {
			return "", fmt.Errorf("%w: %q and %q are on different volumes", ErrNoCommonAncestor, paths[0], p)
		}
		dir := splitPath(filepath.Dir(p)[len(filepath.VolumeName(p)):])
		if i == 0 {
			common = dir
			continue
		}
		n := 0
		for n < len(common) && n < len(dir) && common[n] == dir[n] {
			n++
		}
		common = common[:n]
	}
	return volume + string(filepath.Separator) + filepath.Join(common...), nil
}

// RelativePath returns the slash separated path leading from directory from
// to target. Both are relative to the same base.
func RelativePath(from, target string) string {
	src := splitPath(from)
	dst := splitPath(target)

	n := 0
	for n < len(src) && n < len(dst) && src[n] == dst[n] {
		n++
	}
	parts := make([]string, 0, len(src)-n+len(dst)-n)
	for range src[n:] {
		parts = append(parts, "..")
	}
	parts = append(parts, dst[n:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

// splitPath returns the non-empty components of a cleaned path.
func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	var parts []string
	for _, c := range strings.Split(p, "/") {
		if c != "" && c != "." {
			parts = append(parts, c)
		}
	}
	return parts
}

func isRoot(dir string) bool {
	return filepath.Dir(dir) == dir
}

// replaceReference replaces occurrences of ref that are not part of a
// longer path. Escaped backslashes, as written inside quoted strings, are
// matched too.
func replaceReference(content, ref, repl string) string {
	content = replaceBounded(content, ref, repl)
	if escaped := strings.ReplaceAll(ref, `\`, `\\`); escaped != ref {
		content = replaceBounded(content, escaped, repl)
	}
	return content
}

func replaceBounded(content, old, repl string) string {
	if old == "" {
		return content
	}
	var b strings.Builder
	last := 0
	for from := 0; ; {
		i := strings.Index(content[from:], old)
		if i < 0 {
			break
		}
		start, end := from+i, from+i+len(old)
		if (start == 0 || !isPathByte(content[start-1])) &&
			(end == len(content) || !isPathByte(content[end])) {
			b.WriteString(content[last:start])
			b.WriteString(repl)
			last = end
		}
		from = end
	}
	b.WriteString(content[last:])
	return b.String()
}

func isPathByte(c byte) bool {
	return !strings.ContainsRune(" \t\r\n\"'<>,;()[]{}=", rune(c))
}

// Package meshconv converts mesh files into Inventor scene text.
package meshconv

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/logger"
	"github.com/Faultbox/urdf2iv/pkg/inventor"
)

// Converter errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrUnknownMaterial   = errors.New("unknown material")
)

// Request describes one mesh conversion.
type Request struct {
	// Path is the absolute path of the source mesh.
	Path string
	// Scale multiplies vertex positions per axis.
	Scale [3]float64
	// Material names a colour that replaces the materials of the mesh.
	Material string
	// Color is used for meshes that carry no material of their own.
	Color *[4]float64
	// Extension is the output format, ".iv".
	Extension string
}

// Key identifies the request for caching.
func (r Request) Key() string {
	color := "-"
	if r.Color != nil {
		color = fmt.Sprint(*r.Color)
	}
	return fmt.Sprintf("%s|%v|%s|%s|%s", r.Path, r.Scale, r.Material, color, r.Extension)
}

// Result is a converted mesh.
type Result struct {
	// Content is an Inventor Separator without file header. Textures are
	// referenced by their absolute paths.
	Content string
	// Textures lists the absolute texture paths used, sorted and unique.
	Textures []string
	Faces    int
}

// Converter converts a mesh file. Implementations are atomic per call.
type Converter interface {
	Convert(req Request) (*Result, error)
}

// MeshConverter converts OBJ and STL meshes in memory.
type MeshConverter struct {
	log *zap.Logger
}

// New creates a converter.
func New() *MeshConverter {
	return &MeshConverter{log: logger.Named("meshconv")}
}

// Convert implements Converter.
func (c *MeshConverter) Convert(req Request) (*Result, error) {
	if ext := strings.ToLower(req.Extension); ext != "" && ext != ".iv" {
		return nil, fmt.Errorf("%w: output %q", ErrUnsupportedFormat, req.Extension)
	}
	if req.Scale == ([3]float64{}) {
		req.Scale = [3]float64{1, 1, 1}
	}

	var override *inventor.Material
	if req.Material != "" {
		m, err := NamedMaterial(req.Material)
		if err != nil {
			return nil, err
		}
		override = m
	}

	var (
		root     *inventor.Separator
		textures []string
		err      error
	)
	switch ext := strings.ToLower(filepath.Ext(req.Path)); ext {
	case ".obj":
		root, textures, err = c.convertOBJ(req, override)
	case ".stl":
		root, err = convertSTL(req, override)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Content:  inventor.MarshalNode(root),
		Textures: uniqueSorted(textures),
		Faces:    countFaces(root),
	}
	c.log.Debug("converted mesh",
		zap.String("path", req.Path),
		zap.Int("faces", res.Faces),
		zap.Int("textures", len(res.Textures)))
	return res, nil
}

// colorMaterial builds a diffuse material from an RGBA colour.
func colorMaterial(rgba [4]float64) *inventor.Material {
	m := inventor.DefaultMaterial()
	m.Diffuse = [3]float64{rgba[0], rgba[1], rgba[2]}
	m.Transparency = 1 - rgba[3]
	return m
}

func scalePoint(p [3]float64, s [3]float64) [3]float64 {
	return [3]float64{p[0] * s[0], p[1] * s[1], p[2] * s[2]}
}

func uniqueSorted(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func countFaces(n inventor.Node) int {
	switch v := n.(type) {
	case *inventor.Separator:
		total := 0
		for _, c := range v.Children {
			total += countFaces(c)
		}
		return total
	case *inventor.IndexedFaceSet:
		return v.FaceCount()
	}
	return 0
}

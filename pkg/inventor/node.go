// Package inventor builds Open Inventor 2.1 scene graphs and writes them in
// the ASCII file format.
package inventor

import (
	"github.com/Faultbox/urdf2iv/pkg/math"
)

// Header is the first line of every ASCII Inventor file.
const Header = "#Inventor V2.1 ascii"

// Node is an element of the scene graph.
type Node interface {
	write(w *writer)
}

// Separator groups nodes and isolates their state from siblings.
type Separator struct {
	// Name is emitted as a DEF name when not empty.
	Name     string
	Children []Node
}

// NewSeparator creates a separator with the given children.
func NewSeparator(name string, children ...Node) *Separator {
	return &Separator{Name: name, Children: children}
}

// Add appends children.
func (s *Separator) Add(children ...Node) {
	s.Children = append(s.Children, children...)
}

// Transform is a rigid transform with optional non-uniform scale.
type Transform struct {
	Translation [3]float64
	// Rotation is an axis followed by an angle in radians.
	Rotation    [4]float64
	ScaleFactor [3]float64
}

// NewTransform converts a pose into a Transform node with unit scale.
func NewTransform(p math.Pose) *Transform {
	axis, angle := p.AxisAngle()
	return &Transform{
		Translation: [3]float64{p.Position[0], p.Position[1], p.Position[2]},
		Rotation:    [4]float64{axis[0], axis[1], axis[2], angle},
		ScaleFactor: [3]float64{1, 1, 1},
	}
}

// Material sets the colour of subsequent shapes.
type Material struct {
	Ambient      [3]float64
	Diffuse      [3]float64
	Specular     [3]float64
	Emissive     [3]float64
	Shininess    float64 // 0..1
	Transparency float64 // 0 = opaque
}

// DefaultMaterial is the Inventor default grey.
func DefaultMaterial() *Material {
	return &Material{
		Ambient: [3]float64{0.2, 0.2, 0.2},
		Diffuse: [3]float64{0.8, 0.8, 0.8},
	}
}

// Texture2 maps an image file onto subsequent shapes.
type Texture2 struct {
	Filename string
}

// Coordinate3 holds vertex positions for IndexedFaceSet.
type Coordinate3 struct {
	Points [][3]float64
}

// TextureCoordinate2 holds texture coordinates for IndexedFaceSet.
type TextureCoordinate2 struct {
	Points [][2]float64
}

// IndexedFaceSet draws polygons from the current coordinates. Each face
// is terminated by -1 in the index lists.
type IndexedFaceSet struct {
	CoordIndex        []int
	TextureCoordIndex []int
}

// AddFace appends one polygon. tex may be nil.
func (f *IndexedFaceSet) AddFace(coords, tex []int) {
	f.CoordIndex = append(f.CoordIndex, coords...)
	f.CoordIndex = append(f.CoordIndex, -1)
	if tex != nil {
		f.TextureCoordIndex = append(f.TextureCoordIndex, tex...)
		f.TextureCoordIndex = append(f.TextureCoordIndex, -1)
	}
}

// FaceCount returns the number of polygons.
func (f *IndexedFaceSet) FaceCount() int {
	n := 0
	for _, i := range f.CoordIndex {
		if i == -1 {
			n++
		}
	}
	return n
}

// Cube is a box centred at the origin.
type Cube struct {
	Width, Height, Depth float64
}

// Cylinder is centred at the origin with its axis along Y.
type Cylinder struct {
	Radius, Height float64
}

// Sphere is centred at the origin.
type Sphere struct {
	Radius float64
}

// File includes another Inventor file by name.
type File struct {
	Name string
}

// Info carries a free-form string, e.g. the source of a model.
type Info struct {
	String string
}

// Raw is preformatted Inventor text, written line by line at the current
// indentation. It is used to merge already converted content.
type Raw struct {
	Text string
}

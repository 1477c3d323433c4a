// Wavefront OBJ geometry parser.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJ    = errors.New("invalid OBJ data")
	ErrOBJIndexRange = errors.New("OBJ index out of range")
	ErrEmptyOBJ      = errors.New("OBJ contains no faces")
)

// OBJFace is a polygon. Indices are zero-based; -1 marks a missing
// texture coordinate or normal.
type OBJFace struct {
	V  []int
	VT []int
	VN []int
}

// OBJGroup holds the faces drawn with one material.
type OBJGroup struct {
	Material string
	Faces    []OBJFace
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Vertices     [][3]float64
	TexCoords    [][2]float64
	Normals      [][3]float64
	Groups       []*OBJGroup
	MaterialLibs []string // mtllib references, relative to the OBJ file
}

// FaceCount returns the number of faces across all groups.
func (o *OBJ) FaceCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Faces)
	}
	return n
}

// ParseOBJ parses OBJ text from r.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}
	current := &OBJGroup{}
	obj.Groups = append(obj.Groups, current)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			var v [3]float64
			if n, err := parseFloats(fields[1:], v[:]); err != nil || n < 3 {
				return nil, fmt.Errorf("%w: line %d: bad vertex", ErrInvalidOBJ, lineNo)
			}
			obj.Vertices = append(obj.Vertices, v)
		case "vt":
			var vt [2]float64
			if n, err := parseFloats(fields[1:], vt[:]); err != nil || n < 1 {
				return nil, fmt.Errorf("%w: line %d: bad texture coordinate", ErrInvalidOBJ, lineNo)
			}
			obj.TexCoords = append(obj.TexCoords, vt)
		case "vn":
			var vn [3]float64
			if n, err := parseFloats(fields[1:], vn[:]); err != nil || n < 3 {
				return nil, fmt.Errorf("%w: line %d: bad normal", ErrInvalidOBJ, lineNo)
			}
			obj.Normals = append(obj.Normals, vn)
		case "f":
			face, err := obj.parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.Faces = append(current.Faces, face)
		case "usemtl":
			name := strings.Join(fields[1:], " ")
			if len(current.Faces) == 0 {
				current.Material = name
			} else {
				current = &OBJGroup{Material: name}
				obj.Groups = append(obj.Groups, current)
			}
		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, fields[1:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	// Drop the groups that never received faces.
	groups := obj.Groups[:0]
	for _, g := range obj.Groups {
		if len(g.Faces) > 0 {
			groups = append(groups, g)
		}
	}
	obj.Groups = groups
	if len(obj.Groups) == 0 {
		return nil, ErrEmptyOBJ
	}
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

func (o *OBJ) parseFace(refs []string) (OBJFace, error) {
	if len(refs) < 3 {
		return OBJFace{}, fmt.Errorf("%w: face with %d vertices", ErrInvalidOBJ, len(refs))
	}
	face := OBJFace{
		V:  make([]int, len(refs)),
		VT: make([]int, len(refs)),
		VN: make([]int, len(refs)),
	}
	for i, ref := range refs {
		parts := strings.Split(ref, "/")
		var err error
		if face.V[i], err = resolveIndex(parts[0], len(o.Vertices)); err != nil {
			return OBJFace{}, err
		}
		face.VT[i], face.VN[i] = -1, -1
		if len(parts) > 1 && parts[1] != "" {
			if face.VT[i], err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if face.VN[i], err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
	}
	return face, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidOBJ, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("%w: %d of %d", ErrOBJIndexRange, i, count)
}

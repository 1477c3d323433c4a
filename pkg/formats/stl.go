// STL (stereolithography) mesh parser, binary and ASCII.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrInvalidSTL   = errors.New("invalid STL data")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// STLTriangle is one facet.
type STLTriangle struct {
	Normal   [3]float32
	Vertices [3][3]float32
}

// STL represents a parsed STL file.
type STL struct {
	Name      string // solid name (ASCII) or header text (binary)
	Binary    bool
	Triangles []STLTriangle
}

// ParseSTL parses STL data, detecting binary or ASCII encoding.
func ParseSTL(data []byte) (*STL, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	if len(data) < stlHeaderSize+4 {
		return nil, ErrTruncatedSTL
	}
	return parseBinarySTL(data)
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// isBinarySTL checks the size implied by the triangle count. Some binary
// files start their header with "solid", so the prefix alone is not enough.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize
}

func parseBinarySTL(data []byte) (*STL, error) {
	r := bytes.NewReader(data)

	header := make([]byte, stlHeaderSize)
	if _, err := r.Read(header); err != nil {
		return nil, ErrTruncatedSTL
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, ErrTruncatedSTL
	}
	if uint64(r.Len()) < uint64(count)*stlTriangleSize {
		return nil, fmt.Errorf("%w: %d triangles declared, %d bytes left", ErrTruncatedSTL, count, r.Len())
	}

	stl := &STL{
		Name:      strings.TrimRight(string(bytes.TrimRight(header, "\x00")), " "),
		Binary:    true,
		Triangles: make([]STLTriangle, count),
	}
	for i := uint32(0); i < count; i++ {
		tri := &stl.Triangles[i]
		binary.Read(r, binary.LittleEndian, &tri.Normal)
		binary.Read(r, binary.LittleEndian, &tri.Vertices)

		// Attribute byte count (unused)
		var attr uint16
		binary.Read(r, binary.LittleEndian, &attr)
	}
	return stl, nil
}

func parseASCIISTL(data []byte) (*STL, error) {
	stl := &STL{}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var tri STLTriangle
	vertex := 0
	inFacet := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			stl.Name = strings.Join(fields[1:], " ")
		case "facet":
			if len(fields) < 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: bad facet", ErrInvalidSTL, lineNo)
			}
			var n [3]float64
			if _, err := parseFloats(fields[2:5], n[:]); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
			}
			tri = STLTriangle{Normal: [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}}
			vertex = 0
			inFacet = true
		case "vertex":
			if !inFacet || vertex >= 3 || len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: unexpected vertex", ErrInvalidSTL, lineNo)
			}
			var v [3]float64
			if _, err := parseFloats(fields[1:4], v[:]); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
			}
			tri.Vertices[vertex] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
			vertex++
		case "endfacet":
			if !inFacet || vertex != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrInvalidSTL, lineNo, vertex)
			}
			stl.Triangles = append(stl.Triangles, tri)
			inFacet = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading STL: %w", err)
	}
	if inFacet {
		return nil, ErrTruncatedSTL
	}
	return stl, nil
}

// Wavefront MTL material library parser.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidMTL is returned for malformed material libraries.
var ErrInvalidMTL = errors.New("invalid MTL data")

// MTLMaterial is one newmtl entry.
type MTLMaterial struct {
	Name       string
	Ambient    [3]float64 // Ka
	Diffuse    [3]float64 // Kd
	Specular   [3]float64 // Ks
	Emissive   [3]float64 // Ke
	Shininess  float64    // Ns
	Dissolve   float64    // d, 1 = opaque
	DiffuseMap string     // map_Kd, as written in the file
}

// ParseMTL parses an MTL library. Materials are returned in file order.
func ParseMTL(r io.Reader) ([]*MTLMaterial, error) {
	var materials []*MTLMaterial
	var current *MTLMaterial

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "newmtl" {
			current = &MTLMaterial{
				Name:     strings.Join(fields[1:], " "),
				Diffuse:  [3]float64{0.8, 0.8, 0.8},
				Dissolve: 1,
			}
			materials = append(materials, current)
			continue
		}
		if current == nil {
			continue
		}

		var err error
		switch fields[0] {
		case "Ka":
			_, err = parseFloats(fields[1:], current.Ambient[:])
		case "Kd":
			_, err = parseFloats(fields[1:], current.Diffuse[:])
		case "Ks":
			_, err = parseFloats(fields[1:], current.Specular[:])
		case "Ke":
			_, err = parseFloats(fields[1:], current.Emissive[:])
		case "Ns":
			v := []float64{0}
			_, err = parseFloats(fields[1:], v)
			current.Shininess = v[0]
		case "d":
			v := []float64{1}
			_, err = parseFloats(fields[1:], v)
			current.Dissolve = v[0]
		case "Tr":
			v := []float64{0}
			_, err = parseFloats(fields[1:], v)
			current.Dissolve = 1 - v[0]
		case "map_Kd":
			// Options such as "-s 1 1 1" precede the file name.
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: map_Kd without file", ErrInvalidMTL, lineNo)
			}
			current.DiffuseMap = fields[len(fields)-1]
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidMTL, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return materials, nil
}

// ParseMTLFile parses an MTL file from disk.
func ParseMTLFile(path string) ([]*MTLMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	defer f.Close()
	return ParseMTL(f)
}

// Package formats provides parsers for the mesh file formats referenced by robot descriptions.
package formats

import (
	"strconv"
	"strings"
)

// parseFloats parses whitespace separated floats into dst, returning how many were read.
func parseFloats(fields []string, dst []float64) (int, error) {
	n := 0
	for i := 0; i < len(fields) && i < len(dst); i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return n, err
		}
		dst[i] = v
		n++
	}
	return n, nil
}

// stripComment removes a trailing '#' comment.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

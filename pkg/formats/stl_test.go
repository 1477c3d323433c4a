package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeBinarySTL builds a binary STL with the given triangles.
func makeBinarySTL(header string, tris []STLTriangle) []byte {
	buf := new(bytes.Buffer)
	h := make([]byte, stlHeaderSize)
	copy(h, header)
	buf.Write(h)
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		binary.Write(buf, binary.LittleEndian, tri.Normal)
		binary.Write(buf, binary.LittleEndian, tri.Vertices)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

var testTriangle = STLTriangle{
	Normal:   [3]float32{0, 0, 1},
	Vertices: [3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
}

func TestParseSTL_Binary(t *testing.T) {
	// A header starting with "solid" must still be detected as binary.
	data := makeBinarySTL("solid exported by cad", []STLTriangle{testTriangle, testTriangle})

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if !stl.Binary {
		t.Error("expected binary STL")
	}
	if len(stl.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(stl.Triangles))
	}
	if stl.Triangles[1] != testTriangle {
		t.Errorf("unexpected triangle %+v", stl.Triangles[1])
	}
	if stl.Name != "solid exported by cad" {
		t.Errorf("unexpected name %q", stl.Name)
	}
}

func TestParseSTL_ASCII(t *testing.T) {
	data := []byte(`solid plate
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid plate
`)
	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if stl.Binary {
		t.Error("expected ASCII STL")
	}
	if stl.Name != "plate" {
		t.Errorf("expected name 'plate', got %q", stl.Name)
	}
	if len(stl.Triangles) != 1 || stl.Triangles[0] != testTriangle {
		t.Errorf("unexpected triangles %+v", stl.Triangles)
	}
}

func TestParseSTL_Errors(t *testing.T) {
	truncated := makeBinarySTL("x", []STLTriangle{testTriangle})
	truncated = truncated[:len(truncated)-10]

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedSTL},
		{"short header", []byte("abc"), ErrTruncatedSTL},
		{"truncated binary", truncated, ErrTruncatedSTL},
		{"ascii missing vertex", []byte("solid a\nfacet normal 0 0 1\nvertex 0 0 0\nendfacet\n"), ErrInvalidSTL},
		{"ascii unterminated", []byte("solid a\nfacet normal 0 0 1\nvertex 0 0 0\n"), ErrTruncatedSTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseSTLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.stl")
	if err := os.WriteFile(path, makeBinarySTL("", []STLTriangle{testTriangle}), 0644); err != nil {
		t.Fatalf("failed to write test STL: %v", err)
	}

	stl, err := ParseSTLFile(path)
	if err != nil {
		t.Fatalf("ParseSTLFile failed: %v", err)
	}
	if len(stl.Triangles) != 1 {
		t.Errorf("expected 1 triangle, got %d", len(stl.Triangles))
	}
}

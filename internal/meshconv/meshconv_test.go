package meshconv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedOBJ = `mtllib part.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl painted
f 1/1 2/2 3/3
usemtl painted_again
f 1/1 3/3 4/4
usemtl plain
f 1 2 4
`

const partMTL = `newmtl painted
Kd 0.9 0.1 0.1
Ns 500
map_Kd ../textures/paint.png
newmtl painted_again
map_Kd ../textures/paint.png
newmtl plain
Kd 0.2 0.2 0.2
d 0.5
`

const asciiSTL = `solid tri
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
facet normal 0 0 1
outer loop
vertex 1 0 0
vertex 1 1 0
vertex 0 1 0
endloop
endfacet
endsolid tri
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertOBJ_Textures(t *testing.T) {
	dir := t.TempDir()
	mesh := writeFile(t, filepath.Join(dir, "meshes", "part.obj"), texturedOBJ)
	writeFile(t, filepath.Join(dir, "meshes", "part.mtl"), partMTL)

	res, err := New().Convert(Request{Path: mesh, Scale: [3]float64{2, 2, 2}, Extension: ".iv"})
	require.NoError(t, err)

	tex := filepath.Join(dir, "textures", "paint.png")
	// Two groups share one texture: reported once.
	assert.Equal(t, []string{tex}, res.Textures)
	assert.Equal(t, 3, res.Faces)
	assert.Equal(t, 2, strings.Count(res.Content, `filename "`+tex+`"`))
	assert.Contains(t, res.Content, "2 2 0")
	assert.Contains(t, res.Content, "diffuseColor 0.9 0.1 0.1")
	assert.Contains(t, res.Content, "shininess 0.5")
	assert.Contains(t, res.Content, "transparency 0.5")
	assert.Contains(t, res.Content, "textureCoordIndex")
	assert.True(t, strings.HasPrefix(res.Content, "Separator {"), "content must be a bare Separator")
}

func TestConvertOBJ_MissingLibrary(t *testing.T) {
	dir := t.TempDir()
	mesh := writeFile(t, filepath.Join(dir, "part.obj"), texturedOBJ)

	res, err := New().Convert(Request{Path: mesh})
	require.NoError(t, err)
	assert.Empty(t, res.Textures)
	assert.NotContains(t, res.Content, "Texture2")
	assert.NotContains(t, res.Content, "textureCoordIndex")
}

func TestConvert_MaterialOverride(t *testing.T) {
	dir := t.TempDir()
	mesh := writeFile(t, filepath.Join(dir, "part.obj"), texturedOBJ)
	writeFile(t, filepath.Join(dir, "part.mtl"), partMTL)

	res, err := New().Convert(Request{Path: mesh, Material: "Blue"})
	require.NoError(t, err)
	assert.Empty(t, res.Textures)
	assert.Contains(t, res.Content, "diffuseColor 0.1 0.2 0.8")
	assert.NotContains(t, res.Content, "0.9 0.1 0.1")

	_, err = New().Convert(Request{Path: mesh, Material: "plaid"})
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestConvertSTL(t *testing.T) {
	dir := t.TempDir()
	mesh := writeFile(t, filepath.Join(dir, "plate.STL"), asciiSTL)

	color := [4]float64{0, 1, 0, 1}
	res, err := New().Convert(Request{Path: mesh, Scale: [3]float64{1, 1, 3}, Color: &color})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Faces)
	assert.Nil(t, res.Textures)
	// Shared corners are merged: 4 distinct vertices.
	assert.Equal(t, 1, strings.Count(res.Content, "1 0 0"))
	assert.Equal(t, 1, strings.Count(res.Content, "1 1 0"))
	assert.Contains(t, res.Content, "diffuseColor 0 1 0")
	assert.Contains(t, res.Content, "1, 3, 2, -1")
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "broken.obj"), "v 0 0\nf 1 1 1\n")
	dae := writeFile(t, filepath.Join(dir, "part.dae"), "<COLLADA/>")
	obj := writeFile(t, filepath.Join(dir, "ok.obj"), texturedOBJ)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing file", Request{Path: filepath.Join(dir, "nope.stl")}},
		{"broken obj", Request{Path: bad}},
		{"unknown input", Request{Path: dae}},
		{"unknown output", Request{Path: obj, Extension: ".wrl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Convert(tt.req)
			assert.Error(t, err)
			assert.Nil(t, res)
		})
	}

	_, err := New().Convert(Request{Path: dae})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, filepath.Join("/m", "tex", "a.png"), resolveRelative("/m", `tex\a.png`))
	assert.Equal(t, "/abs/a.png", resolveRelative("/m", "/abs/../abs/a.png"))
	assert.Equal(t, filepath.Join("/tex", "a.png"), resolveRelative("/m/meshes", "../../tex/a.png"))
}

func TestRequestKey(t *testing.T) {
	c := [4]float64{1, 0, 0, 1}
	a := Request{Path: "/a.obj", Scale: [3]float64{1, 1, 1}}
	b := a
	b.Color = &c
	assert.NotEqual(t, a.Key(), b.Key())

	d := a
	d.Scale = [3]float64{2, 1, 1}
	assert.NotEqual(t, a.Key(), d.Key())
	assert.Equal(t, a.Key(), Request{Path: "/a.obj", Scale: [3]float64{1, 1, 1}}.Key())
}

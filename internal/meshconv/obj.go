package meshconv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/pkg/formats"
	"github.com/Faultbox/urdf2iv/pkg/inventor"
)

// convertOBJ emits shared coordinates followed by one Separator per
// material group. Textures come back as absolute paths.
func (c *MeshConverter) convertOBJ(req Request, override *inventor.Material) (*inventor.Separator, []string, error) {
	obj, err := formats.ParseOBJFile(req.Path)
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Dir(req.Path)

	materials := map[string]*formats.MTLMaterial{}
	if override == nil {
		for _, lib := range obj.MaterialLibs {
			libPath := resolveRelative(dir, lib)
			mats, err := formats.ParseMTLFile(libPath)
			if errors.Is(err, os.ErrNotExist) {
				// Exporters often reference libraries they never wrote.
				c.log.Warn("material library not found", zap.String("mesh", req.Path), zap.String("mtllib", libPath))
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", libPath, err)
			}
			for _, m := range mats {
				materials[m.Name] = m
			}
		}
	}

	coords := &inventor.Coordinate3{Points: make([][3]float64, len(obj.Vertices))}
	for i, v := range obj.Vertices {
		coords.Points[i] = scalePoint(v, req.Scale)
	}
	root := inventor.NewSeparator("", coords)

	if len(obj.TexCoords) > 0 {
		root.Add(&inventor.TextureCoordinate2{Points: obj.TexCoords})
	}

	var textures []string
	for _, g := range obj.Groups {
		group := inventor.NewSeparator("")
		mtl := materials[g.Material]

		switch {
		case override != nil:
			group.Add(override)
		case mtl != nil:
			group.Add(mtlMaterial(mtl))
			if mtl.DiffuseMap != "" {
				tex := resolveRelative(dir, mtl.DiffuseMap)
				textures = append(textures, tex)
				group.Add(&inventor.Texture2{Filename: tex})
			}
		case req.Color != nil:
			group.Add(colorMaterial(*req.Color))
		}

		group.Add(faceSet(g, override == nil && mtl != nil && mtl.DiffuseMap != ""))
		root.Add(group)
	}
	return root, textures, nil
}

// faceSet builds the faces of one group. Texture indices are written only
// when the group is textured and every face carries them.
func faceSet(g *formats.OBJGroup, textured bool) *inventor.IndexedFaceSet {
	if textured {
		for _, f := range g.Faces {
			for _, vt := range f.VT {
				if vt < 0 {
					textured = false
				}
			}
		}
	}
	set := &inventor.IndexedFaceSet{}
	for _, f := range g.Faces {
		if textured {
			set.AddFace(f.V, f.VT)
		} else {
			set.AddFace(f.V, nil)
		}
	}
	return set
}

func mtlMaterial(m *formats.MTLMaterial) *inventor.Material {
	shininess := m.Shininess / 1000
	if shininess > 1 {
		shininess = 1
	}
	return &inventor.Material{
		Ambient:      m.Ambient,
		Diffuse:      m.Diffuse,
		Specular:     m.Specular,
		Emissive:     m.Emissive,
		Shininess:    shininess,
		Transparency: 1 - m.Dissolve,
	}
}

// resolveRelative resolves a reference written inside a mesh file.
// Backslashes from Windows exporters are accepted.
func resolveRelative(dir, ref string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(dir, ref)
}

// Package convert turns the visuals of a robot description into per-link
// Inventor models and relocates the textures they reference.
package convert

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/logger"
	"github.com/Faultbox/urdf2iv/internal/meshconv"
	"github.com/Faultbox/urdf2iv/pkg/inventor"
	"github.com/Faultbox/urdf2iv/pkg/math"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// ErrConversionFailed wraps the error of a failed mesh conversion.
var ErrConversionFailed = errors.New("mesh conversion failed")

// Options control mesh collection.
type Options struct {
	// ScaleFactor multiplies mesh vertices and primitive sizes.
	ScaleFactor float64
	// Material names an override colour, see meshconv.NamedMaterial.
	Material  string
	Extension string
	// Correction is applied in each visual's frame after its origin.
	Correction math.Pose
	Resolver   *Resolver
}

// Collection is the result of CollectMeshes.
type Collection struct {
	// Models holds one Inventor document per link with visuals.
	Models map[string]string
	// Textures holds the absolute texture paths per link. Links without
	// textures have no entry.
	Textures map[string]PathSet
}

// cylinderToInventor turns the Inventor cylinder axis (Y) onto the URDF one (Z).
var cylinderToInventor = math.Pose{Rotation: math.FromRPY(gomath.Pi/2, 0, 0)}

// CollectMeshes converts the visuals of from and every link below it. Each
// mesh goes through conv; primitives are written directly. A failed
// conversion aborts the walk and no partial collection is returned.
func CollectMeshes(t *traverser.Traverser, from string, opts Options, conv meshconv.Converter) (*Collection, error) {
	if opts.ScaleFactor == 0 {
		opts.ScaleFactor = 1
	}
	if opts.Correction.Rotation.Len() == 0 {
		opts.Correction = math.Identity()
	}
	if opts.Resolver == nil {
		opts.Resolver = &Resolver{}
	}
	log := logger.Named("convert")

	col := &Collection{Models: map[string]string{}, Textures: map[string]PathSet{}}
	p := traverser.NewFactorParams(opts.ScaleFactor)
	err := t.TopDown(from, func(_ *urdf.Model, p traverser.Params) (traverser.Action, error) {
		fp := p.(*traverser.FactorParams)
		link := fp.Link
		if len(link.Visuals) == 0 {
			return traverser.Continue, nil
		}

		linkSep := inventor.NewSeparator(link.Name)
		textures := PathSet{}
		for i, v := range link.Visuals {
			node, tex, err := convertVisual(v, fp.Factor, opts, conv)
			if err != nil {
				return traverser.Stop, fmt.Errorf("visual %d: %w", i, err)
			}
			if node == nil {
				continue
			}
			linkSep.Add(node)
			textures.Add(tex...)
		}
		if len(linkSep.Children) == 0 {
			return traverser.Continue, nil
		}

		col.Models[link.Name] = inventor.Marshal(linkSep)
		if len(textures) > 0 {
			col.Textures[link.Name] = textures
		}
		log.Debug("collected link",
			zap.String("link", link.Name),
			zap.String("params", traverser.Kind(p)),
			zap.Int("depth", fp.Depth),
			zap.Int("visuals", len(linkSep.Children)),
			zap.Int("textures", len(textures)))
		return traverser.Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return col, nil
}

// convertVisual returns a Separator placing the visual in the link frame,
// or nil for visuals without geometry.
func convertVisual(v *urdf.Visual, factor float64, opts Options, conv meshconv.Converter) (inventor.Node, []string, error) {
	pose := v.Origin.Mul(opts.Correction)
	sep := inventor.NewSeparator(v.Name)

	var color *[4]float64
	if v.Material != nil {
		color = v.Material.Color
	}

	g := v.Geometry
	switch g.Kind {
	case urdf.GeometryNone:
		return nil, nil, nil
	case urdf.GeometryMesh:
		path, err := opts.Resolver.Resolve(g.Filename)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}
		res, err := conv.Convert(meshconv.Request{
			Path:      path,
			Scale:     [3]float64{g.Scale[0] * factor, g.Scale[1] * factor, g.Scale[2] * factor},
			Material:  opts.Material,
			Color:     color,
			Extension: opts.Extension,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrConversionFailed, path, err)
		}
		sep.Add(inventor.NewTransform(pose), &inventor.Raw{Text: res.Content})
		return sep, res.Textures, nil
	}

	// Primitives.
	var textures []string
	material, err := primitiveMaterial(opts.Material, color)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	var shape inventor.Node
	switch g.Kind {
	case urdf.GeometryBox:
		shape = &inventor.Cube{Width: g.Size[0] * factor, Height: g.Size[1] * factor, Depth: g.Size[2] * factor}
	case urdf.GeometryCylinder:
		pose = pose.Mul(cylinderToInventor)
		shape = &inventor.Cylinder{Radius: g.Radius * factor, Height: g.Length * factor}
	case urdf.GeometrySphere:
		shape = &inventor.Sphere{Radius: g.Radius * factor}
	default:
		return nil, nil, fmt.Errorf("%w: geometry %s", ErrConversionFailed, g.Kind)
	}

	sep.Add(inventor.NewTransform(pose), material)
	if opts.Material == "" && v.Material != nil && v.Material.Texture != "" {
		tex, err := opts.Resolver.Resolve(v.Material.Texture)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}
		sep.Add(&inventor.Texture2{Filename: tex})
		textures = append(textures, tex)
	}
	sep.Add(shape)
	return sep, textures, nil
}

func primitiveMaterial(override string, color *[4]float64) (*inventor.Material, error) {
	if override != "" {
		return meshconv.NamedMaterial(override)
	}
	m := inventor.DefaultMaterial()
	if color != nil {
		m.Diffuse = [3]float64{color[0], color[1], color[2]}
		m.Transparency = 1 - color[3]
	}
	return m, nil
}

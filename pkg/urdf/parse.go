package urdf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/urdf2iv/pkg/math"
)

// Parse errors.
var (
	ErrInvalidXML       = errors.New("invalid URDF XML")
	ErrInvalidAttribute = errors.New("invalid URDF attribute")
)

// Parse parses a URDF document and initialises the kinematic tree.
func Parse(data []byte) (*Model, error) {
	var doc xmlRobot
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}

	m := NewModel(doc.Name)

	for _, xm := range doc.Materials {
		mat, err := parseMaterial(&xm)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", xm.Name, err)
		}
		m.Materials = append(m.Materials, mat)
	}

	for i := range doc.Links {
		l, err := m.parseLink(&doc.Links[i])
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", doc.Links[i].Name, err)
		}
		if err := m.AddLink(l); err != nil {
			return nil, err
		}
	}

	for i := range doc.Joints {
		j, err := parseJoint(&doc.Joints[i])
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", doc.Joints[i].Name, err)
		}
		if err := m.AddJoint(j); err != nil {
			return nil, err
		}
	}

	if err := m.InitTree(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseFile parses a URDF file from disk.
func ParseFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading URDF file: %w", err)
	}
	return Parse(data)
}

func (m *Model) parseLink(x *xmlLink) (*Link, error) {
	l := &Link{Name: x.Name}

	for i := range x.Visuals {
		xv := &x.Visuals[i]
		origin, err := parseOrigin(xv.Origin)
		if err != nil {
			return nil, err
		}
		geom, err := parseGeometry(&xv.Geometry)
		if err != nil {
			return nil, err
		}
		v := &Visual{Name: xv.Name, Origin: origin, Geometry: geom}
		if xv.Material != nil {
			mat, err := parseMaterial(xv.Material)
			if err != nil {
				return nil, err
			}
			// A bare reference picks up the model-level definition.
			if mat.Color == nil && mat.Texture == "" {
				if shared := m.Material(mat.Name); shared != nil {
					mat = shared
				}
			}
			v.Material = mat
		}
		l.Visuals = append(l.Visuals, v)
	}

	for i := range x.Collisions {
		xc := &x.Collisions[i]
		origin, err := parseOrigin(xc.Origin)
		if err != nil {
			return nil, err
		}
		geom, err := parseGeometry(&xc.Geometry)
		if err != nil {
			return nil, err
		}
		l.Collisions = append(l.Collisions, &Collision{Name: xc.Name, Origin: origin, Geometry: geom})
	}

	if x.Inertial != nil {
		in, err := parseInertial(x.Inertial)
		if err != nil {
			return nil, err
		}
		l.Inertial = in
	}
	return l, nil
}

func parseInertial(x *xmlInertial) (*Inertial, error) {
	origin, err := parseOrigin(x.Origin)
	if err != nil {
		return nil, err
	}
	in := &Inertial{Origin: origin}
	fields := []struct {
		dst *float64
		src string
	}{
		{&in.Mass, x.Mass.Value},
		{&in.Inertia.IXX, x.Inertia.IXX},
		{&in.Inertia.IXY, x.Inertia.IXY},
		{&in.Inertia.IXZ, x.Inertia.IXZ},
		{&in.Inertia.IYY, x.Inertia.IYY},
		{&in.Inertia.IYZ, x.Inertia.IYZ},
		{&in.Inertia.IZZ, x.Inertia.IZZ},
	}
	for _, f := range fields {
		if *f.dst, err = parseFloat(f.src, 0); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func parseJoint(x *xmlJoint) (*Joint, error) {
	j := &Joint{
		Name:   x.Name,
		Type:   ParseJointType(x.Type),
		Parent: x.Parent.Link,
		Child:  x.Child.Link,
	}
	if j.Type == JointUnknown {
		return nil, fmt.Errorf("%w: joint type %q", ErrInvalidAttribute, x.Type)
	}

	var err error
	if j.Origin, err = parseOrigin(x.Origin); err != nil {
		return nil, err
	}

	j.Axis = mgl64.Vec3{1, 0, 0}
	if x.Axis != nil {
		axis, err := parseVec3(x.Axis.XYZ, [3]float64{1, 0, 0})
		if err != nil {
			return nil, err
		}
		j.Axis = mgl64.Vec3(axis)
	}

	if x.Limit != nil {
		lim := &Limit{}
		for _, f := range []struct {
			dst *float64
			src string
		}{
			{&lim.Lower, x.Limit.Lower},
			{&lim.Upper, x.Limit.Upper},
			{&lim.Effort, x.Limit.Effort},
			{&lim.Velocity, x.Limit.Velocity},
		} {
			if *f.dst, err = parseFloat(f.src, 0); err != nil {
				return nil, err
			}
		}
		j.Limit = lim
	}
	return j, nil
}

func parseGeometry(x *xmlGeometry) (Geometry, error) {
	switch {
	case x.Mesh != nil:
		scale, err := parseVec3(x.Mesh.Scale, [3]float64{1, 1, 1})
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: GeometryMesh, Filename: x.Mesh.Filename, Scale: scale}, nil
	case x.Box != nil:
		size, err := parseVec3(x.Box.Size, [3]float64{})
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: GeometryBox, Size: size}, nil
	case x.Cylinder != nil:
		r, err := parseFloat(x.Cylinder.Radius, 0)
		if err != nil {
			return Geometry{}, err
		}
		length, err := parseFloat(x.Cylinder.Length, 0)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: GeometryCylinder, Radius: r, Length: length}, nil
	case x.Sphere != nil:
		r, err := parseFloat(x.Sphere.Radius, 0)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: GeometrySphere, Radius: r}, nil
	}
	return Geometry{Kind: GeometryNone}, nil
}

func parseMaterial(x *xmlMaterial) (*Material, error) {
	mat := &Material{Name: x.Name}
	if x.Color != nil {
		var rgba [4]float64
		fields := strings.Fields(x.Color.RGBA)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: rgba %q", ErrInvalidAttribute, x.Color.RGBA)
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: rgba %q", ErrInvalidAttribute, x.Color.RGBA)
			}
			rgba[i] = v
		}
		mat.Color = &rgba
	}
	if x.Texture != nil {
		mat.Texture = x.Texture.Filename
	}
	return mat, nil
}

func parseOrigin(x *xmlOrigin) (math.Pose, error) {
	if x == nil {
		return math.Identity(), nil
	}
	xyz, err := parseVec3(x.XYZ, [3]float64{})
	if err != nil {
		return math.Pose{}, err
	}
	rpy, err := parseVec3(x.RPY, [3]float64{})
	if err != nil {
		return math.Pose{}, err
	}
	return math.NewPose(xyz, rpy), nil
}

// parseVec3 parses "x y z", returning def for an empty attribute.
func parseVec3(s string, def [3]float64) ([3]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return def, nil
	}
	if len(fields) != 3 {
		return def, fmt.Errorf("%w: expected 3 values, got %q", ErrInvalidAttribute, s)
	}
	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return def, fmt.Errorf("%w: %q", ErrInvalidAttribute, s)
		}
		v[i] = x
	}
	return v, nil
}

func parseFloat(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %q", ErrInvalidAttribute, s)
	}
	return v, nil
}

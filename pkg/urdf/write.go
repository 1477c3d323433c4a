package urdf

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/urdf2iv/pkg/math"
)

// Marshal serialises the model back to URDF XML.
func Marshal(m *Model) ([]byte, error) {
	doc := xmlRobot{Name: m.Name}

	for _, mat := range m.Materials {
		doc.Materials = append(doc.Materials, *materialXML(mat))
	}
	for _, l := range m.Links {
		doc.Links = append(doc.Links, linkXML(l))
	}
	for _, j := range m.Joints {
		doc.Joints = append(doc.Joints, jointXML(j))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling URDF: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// WriteFile writes the model as URDF to path, creating parent directories.
func WriteFile(m *Model, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func linkXML(l *Link) xmlLink {
	x := xmlLink{Name: l.Name}
	for _, v := range l.Visuals {
		xv := xmlVisual{
			Name:     v.Name,
			Origin:   originXML(v.Origin),
			Geometry: geometryXML(v.Geometry),
		}
		if v.Material != nil {
			xv.Material = materialXML(v.Material)
		}
		x.Visuals = append(x.Visuals, xv)
	}
	for _, c := range l.Collisions {
		x.Collisions = append(x.Collisions, xmlCollision{
			Name:     c.Name,
			Origin:   originXML(c.Origin),
			Geometry: geometryXML(c.Geometry),
		})
	}
	if in := l.Inertial; in != nil {
		x.Inertial = &xmlInertial{
			Origin: originXML(in.Origin),
			Mass:   xmlValue{Value: formatFloat(in.Mass)},
			Inertia: xmlInertia{
				IXX: formatFloat(in.Inertia.IXX),
				IXY: formatFloat(in.Inertia.IXY),
				IXZ: formatFloat(in.Inertia.IXZ),
				IYY: formatFloat(in.Inertia.IYY),
				IYZ: formatFloat(in.Inertia.IYZ),
				IZZ: formatFloat(in.Inertia.IZZ),
			},
		}
	}
	return x
}

func jointXML(j *Joint) xmlJoint {
	x := xmlJoint{
		Name:   j.Name,
		Type:   j.Type.String(),
		Origin: originXML(j.Origin),
		Parent: xmlLinkRef{Link: j.Parent},
		Child:  xmlLinkRef{Link: j.Child},
	}
	if j.Type != JointFixed {
		x.Axis = &xmlAxis{XYZ: formatVec3(j.Axis)}
	}
	if lim := j.Limit; lim != nil {
		x.Limit = &xmlLimit{
			Lower:    formatFloat(lim.Lower),
			Upper:    formatFloat(lim.Upper),
			Effort:   formatFloat(lim.Effort),
			Velocity: formatFloat(lim.Velocity),
		}
	}
	return x
}

func geometryXML(g Geometry) xmlGeometry {
	switch g.Kind {
	case GeometryMesh:
		x := &xmlMesh{Filename: g.Filename}
		if g.Scale != [3]float64{1, 1, 1} {
			x.Scale = formatVec3(g.Scale)
		}
		return xmlGeometry{Mesh: x}
	case GeometryBox:
		return xmlGeometry{Box: &xmlBox{Size: formatVec3(g.Size)}}
	case GeometryCylinder:
		return xmlGeometry{Cylinder: &xmlCylinder{Radius: formatFloat(g.Radius), Length: formatFloat(g.Length)}}
	case GeometrySphere:
		return xmlGeometry{Sphere: &xmlSphere{Radius: formatFloat(g.Radius)}}
	}
	return xmlGeometry{}
}

func materialXML(mat *Material) *xmlMaterial {
	x := &xmlMaterial{Name: mat.Name}
	if mat.Color != nil {
		parts := make([]string, 4)
		for i, c := range mat.Color {
			parts[i] = formatFloat(c)
		}
		x.Color = &xmlColor{RGBA: strings.Join(parts, " ")}
	}
	if mat.Texture != "" {
		x.Texture = &xmlTexture{Filename: mat.Texture}
	}
	return x
}

func originXML(p math.Pose) *xmlOrigin {
	if p.IsIdentity() {
		return nil
	}
	return &xmlOrigin{
		XYZ: formatVec3(p.Position),
		RPY: formatVec3(p.RPY()),
	}
}

func formatVec3(v [3]float64) string {
	return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

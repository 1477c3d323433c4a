package urdf

import "encoding/xml"

// XML shapes of the URDF document, shared by Parse and Marshal.

type xmlRobot struct {
	XMLName   xml.Name      `xml:"robot"`
	Name      string        `xml:"name,attr"`
	Materials []xmlMaterial `xml:"material"`
	Links     []xmlLink     `xml:"link"`
	Joints    []xmlJoint    `xml:"joint"`
}

type xmlOrigin struct {
	XYZ string `xml:"xyz,attr,omitempty"`
	RPY string `xml:"rpy,attr,omitempty"`
}

type xmlMaterial struct {
	Name    string      `xml:"name,attr,omitempty"`
	Color   *xmlColor   `xml:"color"`
	Texture *xmlTexture `xml:"texture"`
}

type xmlColor struct {
	RGBA string `xml:"rgba,attr"`
}

type xmlTexture struct {
	Filename string `xml:"filename,attr"`
}

type xmlLink struct {
	Name       string         `xml:"name,attr"`
	Inertial   *xmlInertial   `xml:"inertial"`
	Visuals    []xmlVisual    `xml:"visual"`
	Collisions []xmlCollision `xml:"collision"`
}

type xmlInertial struct {
	Origin  *xmlOrigin `xml:"origin"`
	Mass    xmlValue   `xml:"mass"`
	Inertia xmlInertia `xml:"inertia"`
}

type xmlValue struct {
	Value string `xml:"value,attr"`
}

type xmlInertia struct {
	IXX string `xml:"ixx,attr"`
	IXY string `xml:"ixy,attr"`
	IXZ string `xml:"ixz,attr"`
	IYY string `xml:"iyy,attr"`
	IYZ string `xml:"iyz,attr"`
	IZZ string `xml:"izz,attr"`
}

type xmlVisual struct {
	Name     string       `xml:"name,attr,omitempty"`
	Origin   *xmlOrigin   `xml:"origin"`
	Geometry xmlGeometry  `xml:"geometry"`
	Material *xmlMaterial `xml:"material"`
}

type xmlCollision struct {
	Name     string      `xml:"name,attr,omitempty"`
	Origin   *xmlOrigin  `xml:"origin"`
	Geometry xmlGeometry `xml:"geometry"`
}

type xmlGeometry struct {
	Mesh     *xmlMesh     `xml:"mesh"`
	Box      *xmlBox      `xml:"box"`
	Cylinder *xmlCylinder `xml:"cylinder"`
	Sphere   *xmlSphere   `xml:"sphere"`
}

type xmlMesh struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr,omitempty"`
}

type xmlBox struct {
	Size string `xml:"size,attr"`
}

type xmlCylinder struct {
	Radius string `xml:"radius,attr"`
	Length string `xml:"length,attr"`
}

type xmlSphere struct {
	Radius string `xml:"radius,attr"`
}

type xmlJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Origin *xmlOrigin `xml:"origin"`
	Parent xmlLinkRef `xml:"parent"`
	Child  xmlLinkRef `xml:"child"`
	Axis   *xmlAxis   `xml:"axis"`
	Limit  *xmlLimit  `xml:"limit"`
}

type xmlLinkRef struct {
	Link string `xml:"link,attr"`
}

type xmlAxis struct {
	XYZ string `xml:"xyz,attr"`
}

type xmlLimit struct {
	Lower    string `xml:"lower,attr,omitempty"`
	Upper    string `xml:"upper,attr,omitempty"`
	Effort   string `xml:"effort,attr"`
	Velocity string `xml:"velocity,attr"`
}

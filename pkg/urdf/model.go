// Package urdf provides the robot description model: links, joints and their geometry.
package urdf

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/urdf2iv/pkg/math"
)

// Model errors.
var (
	ErrMalformedTree   = errors.New("malformed kinematic tree")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrUnknownLink     = errors.New("unknown link")
	ErrLinkHasChildren = errors.New("link still has child joints")
	ErrRemoveRoot      = errors.New("cannot remove root link")
)

// JointType is the kind of motion a joint allows.
type JointType int

const (
	JointUnknown JointType = iota
	JointRevolute
	JointContinuous
	JointPrismatic
	JointFixed
	JointFloating
	JointPlanar
)

var jointTypeNames = map[JointType]string{
	JointUnknown:    "unknown",
	JointRevolute:   "revolute",
	JointContinuous: "continuous",
	JointPrismatic:  "prismatic",
	JointFixed:      "fixed",
	JointFloating:   "floating",
	JointPlanar:     "planar",
}

// String returns the URDF spelling of the joint type.
func (t JointType) String() string {
	if s, ok := jointTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// ParseJointType maps a URDF type attribute to a JointType.
func ParseJointType(s string) JointType {
	for t, name := range jointTypeNames {
		if name == s && t != JointUnknown {
			return t
		}
	}
	return JointUnknown
}

// Movable reports whether the joint has at least one degree of freedom.
func (t JointType) Movable() bool {
	return t != JointFixed && t != JointUnknown
}

// GeometryKind identifies the shape carried by a Geometry.
type GeometryKind int

const (
	GeometryNone GeometryKind = iota
	GeometryMesh
	GeometryBox
	GeometryCylinder
	GeometrySphere
)

// String returns a human-readable geometry kind.
func (k GeometryKind) String() string {
	switch k {
	case GeometryMesh:
		return "mesh"
	case GeometryBox:
		return "box"
	case GeometryCylinder:
		return "cylinder"
	case GeometrySphere:
		return "sphere"
	default:
		return "none"
	}
}

// Geometry is either a mesh file reference or a primitive shape.
type Geometry struct {
	Kind     GeometryKind
	Filename string     // mesh only
	Scale    [3]float64 // mesh only, defaults to 1,1,1
	Size     [3]float64 // box only
	Radius   float64    // cylinder, sphere
	Length   float64    // cylinder
}

// Material is a named colour and/or texture.
type Material struct {
	Name    string
	Color   *[4]float64
	Texture string
}

// Visual is renderable geometry attached to a link.
type Visual struct {
	Name     string
	Origin   math.Pose
	Geometry Geometry
	Material *Material
}

// Collision is collision geometry attached to a link.
type Collision struct {
	Name     string
	Origin   math.Pose
	Geometry Geometry
}

// Inertia holds the six independent inertia tensor entries.
type Inertia struct {
	IXX, IXY, IXZ, IYY, IYZ, IZZ float64
}

// Inertial holds the mass properties of a link.
type Inertial struct {
	Origin  math.Pose
	Mass    float64
	Inertia Inertia
}

// Limit holds joint limits.
type Limit struct {
	Lower, Upper     float64
	Effort, Velocity float64
}

// Link is a rigid body in the kinematic tree.
type Link struct {
	Name       string
	Visuals    []*Visual
	Collisions []*Collision
	Inertial   *Inertial

	// Set by InitTree.
	ParentJoint *Joint
	ChildJoints []*Joint
}

// Children returns the links reachable through the child joints, in joint order.
func (l *Link) Children() []*Link {
	children := make([]*Link, 0, len(l.ChildJoints))
	for _, j := range l.ChildJoints {
		children = append(children, j.ChildLink)
	}
	return children
}

// Joint connects a parent link to a child link.
type Joint struct {
	Name   string
	Type   JointType
	Parent string
	Child  string
	Origin math.Pose
	Axis   mgl64.Vec3
	Limit  *Limit

	// Set by InitTree.
	ParentLink *Link
	ChildLink  *Link
}

// Model is a parsed robot description.
type Model struct {
	Name      string
	Links     []*Link
	Joints    []*Joint
	Materials []*Material

	links  map[string]*Link
	joints map[string]*Joint
	root   *Link
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:   name,
		links:  make(map[string]*Link),
		joints: make(map[string]*Joint),
	}
}

// AddLink appends a link. Call InitTree once all links and joints are added.
func (m *Model) AddLink(l *Link) error {
	if _, ok := m.links[l.Name]; ok {
		return fmt.Errorf("%w: link %q", ErrDuplicateName, l.Name)
	}
	m.links[l.Name] = l
	m.Links = append(m.Links, l)
	return nil
}

// AddJoint appends a joint. Call InitTree once all links and joints are added.
func (m *Model) AddJoint(j *Joint) error {
	if _, ok := m.joints[j.Name]; ok {
		return fmt.Errorf("%w: joint %q", ErrDuplicateName, j.Name)
	}
	if j.Axis == (mgl64.Vec3{}) {
		j.Axis = mgl64.Vec3{1, 0, 0}
	}
	m.joints[j.Name] = j
	m.Joints = append(m.Joints, j)
	return nil
}

// Link resolves a link by name.
func (m *Model) Link(name string) (*Link, bool) {
	l, ok := m.links[name]
	return l, ok
}

// Joint resolves a joint by name.
func (m *Model) Joint(name string) (*Joint, bool) {
	j, ok := m.joints[name]
	return j, ok
}

// Root returns the root link, or nil before InitTree succeeded.
func (m *Model) Root() *Link {
	return m.root
}

// InitTree connects links through their joints and identifies the root.
// It fails with ErrMalformedTree when a joint references a missing link, a link has
// two parents, there is not exactly one root, or some link is unreachable from the
// root (which is how a cycle shows up once every link has at most one parent).
func (m *Model) InitTree() error {
	for _, l := range m.Links {
		l.ParentJoint = nil
		l.ChildJoints = nil
	}

	for _, j := range m.Joints {
		parent, ok := m.links[j.Parent]
		if !ok {
			return fmt.Errorf("%w: joint %q: parent link %q not found", ErrMalformedTree, j.Name, j.Parent)
		}
		child, ok := m.links[j.Child]
		if !ok {
			return fmt.Errorf("%w: joint %q: child link %q not found", ErrMalformedTree, j.Name, j.Child)
		}
		if child.ParentJoint != nil {
			return fmt.Errorf("%w: link %q has parent joints %q and %q",
				ErrMalformedTree, child.Name, child.ParentJoint.Name, j.Name)
		}
		j.ParentLink = parent
		j.ChildLink = child
		child.ParentJoint = j
		parent.ChildJoints = append(parent.ChildJoints, j)
	}

	m.root = nil
	for _, l := range m.Links {
		if l.ParentJoint != nil {
			continue
		}
		if m.root != nil {
			return fmt.Errorf("%w: multiple roots %q and %q", ErrMalformedTree, m.root.Name, l.Name)
		}
		m.root = l
	}
	if m.root == nil {
		return fmt.Errorf("%w: no root link", ErrMalformedTree)
	}

	// Every link has at most one parent here, so a cycle means unreachable links.
	reached := 0
	stack := []*Link{m.root}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		stack = append(stack, l.Children()...)
	}
	if reached != len(m.Links) {
		return fmt.Errorf("%w: %d of %d links unreachable from root %q",
			ErrMalformedTree, len(m.Links)-reached, len(m.Links), m.root.Name)
	}
	return nil
}

// RemoveLink detaches a leaf link and its parent joint from the model.
func (m *Model) RemoveLink(name string) error {
	l, ok := m.links[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLink, name)
	}
	if l == m.root {
		return fmt.Errorf("%w: %q", ErrRemoveRoot, name)
	}
	if len(l.ChildJoints) > 0 {
		return fmt.Errorf("%w: %q", ErrLinkHasChildren, name)
	}

	if j := l.ParentJoint; j != nil {
		parent := j.ParentLink
		for i, cj := range parent.ChildJoints {
			if cj == j {
				parent.ChildJoints = append(parent.ChildJoints[:i], parent.ChildJoints[i+1:]...)
				break
			}
		}
		delete(m.joints, j.Name)
		m.Joints = removeJoint(m.Joints, j)
		l.ParentJoint = nil
	}

	delete(m.links, name)
	for i, ml := range m.Links {
		if ml == l {
			m.Links = append(m.Links[:i], m.Links[i+1:]...)
			break
		}
	}
	return nil
}

func removeJoint(joints []*Joint, j *Joint) []*Joint {
	for i, mj := range joints {
		if mj == j {
			return append(joints[:i], joints[i+1:]...)
		}
	}
	return joints
}

// Material resolves a model-level material by name.
func (m *Model) Material(name string) *Material {
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat
		}
	}
	return nil
}

// Clone returns an independent copy of the model.
func (m *Model) Clone() (*Model, error) {
	data, err := Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("cloning model: %w", err)
	}
	return Parse(data)
}

// MeshCount returns the number of mesh visuals across all links.
func (m *Model) MeshCount() int {
	n := 0
	for _, l := range m.Links {
		for _, v := range l.Visuals {
			if v.Geometry.Kind == GeometryMesh {
				n++
			}
		}
	}
	return n
}

// Package scene assembles the per-link models into one Inventor scene that
// follows the kinematic tree.
package scene

import (
	"fmt"

	"github.com/Faultbox/urdf2iv/pkg/inventor"
	"github.com/Faultbox/urdf2iv/pkg/math"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// Build returns the scene of from and its subtree. Every link becomes a
// Separator nested in its parent's, placed by the joint origin; links found
// in modelFiles include their model with a File node. File names are
// written as given.
func Build(t *traverser.Traverser, from string, modelFiles map[string]string) (*inventor.Separator, error) {
	root := inventor.NewSeparator(t.Model().Name)
	root.Add(&inventor.Info{String: fmt.Sprintf("robot %s, links below %s", t.Model().Name, from)})

	// stack[d] is the separator of the current link at depth d.
	var stack []*inventor.Separator
	p := &traverser.LinkParams{}
	err := t.TopDown(from, func(_ *urdf.Model, p traverser.Params) (traverser.Action, error) {
		b := p.Current()
		sep := inventor.NewSeparator(b.Link.Name)
		if b.Depth == 0 {
			root.Add(sep)
		} else {
			stack[b.Depth-1].Add(sep)
			sep.Add(inventor.NewTransform(b.Link.ParentJoint.Origin))
		}
		if file, ok := modelFiles[b.Link.Name]; ok {
			sep.Add(&inventor.File{Name: file})
		}
		stack = append(stack[:b.Depth], sep)
		return traverser.Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// WorldPoses returns the pose of from and every link below it, relative to
// from, with all joints at their zero position.
func WorldPoses(t *traverser.Traverser, from string) (map[string]math.Pose, error) {
	poses := map[string]math.Pose{}
	var stack []math.Pose
	p := &traverser.LinkParams{}
	err := t.TopDown(from, func(_ *urdf.Model, p traverser.Params) (traverser.Action, error) {
		b := p.Current()
		pose := math.Identity()
		if b.Depth > 0 {
			pose = stack[b.Depth-1].Mul(b.Link.ParentJoint.Origin)
		}
		poses[b.Link.Name] = pose
		stack = append(stack[:b.Depth], pose)
		return traverser.Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return poses, nil
}

// Package transform modifies robot models in place.
package transform

import (
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// ScaleModel scales the whole model from its root. The root has no incoming
// joint to scale.
func ScaleModel(m *urdf.Model, factor float64) error {
	t := traverser.New(m)
	return ScaleSubtree(t, t.RootName(), factor)
}

// ScaleSubtree multiplies the translation part of every visual, collision and
// inertial origin of from and its descendants by factor, and the translation
// of every joint below from. The joint leading into from, rotations and mesh
// files are left untouched; meshes are scaled while converting them.
func ScaleSubtree(t *traverser.Traverser, from string, factor float64) error {
	return t.TopDown(from, scaleLink, traverser.NewFactorParams(factor))
}

func scaleLink(_ *urdf.Model, p traverser.Params) (traverser.Action, error) {
	fp := p.(*traverser.FactorParams)
	l, f := fp.Link, fp.Factor

	for _, v := range l.Visuals {
		v.Origin = v.Origin.ScaleTranslation(f)
	}
	for _, c := range l.Collisions {
		c.Origin = c.Origin.ScaleTranslation(f)
	}
	if l.Inertial != nil {
		l.Inertial.Origin = l.Inertial.Origin.ScaleTranslation(f)
	}
	for _, j := range l.ChildJoints {
		j.Origin = j.Origin.ScaleTranslation(f)
	}
	return traverser.Continue, nil
}

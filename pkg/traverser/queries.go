package traverser

import (
	"fmt"

	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// JointNames returns the names of all joints below from, in pre-order.
// With skipFixed only movable joints are returned.
func (t *Traverser) JointNames(from string, skipFixed bool) ([]string, error) {
	p := NewNamesParams(skipFixed)
	err := t.TopDown(from, func(_ *urdf.Model, p Params) (Action, error) {
		np := p.(*NamesParams)
		for _, j := range np.Link.ChildJoints {
			if np.SkipFixed && !j.Type.Movable() {
				continue
			}
			np.Names = append(np.Names, j.Name)
		}
		return Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return p.Names, nil
}

// LinkNames returns the names of from and all links below it, in pre-order.
func (t *Traverser) LinkNames(from string) ([]string, error) {
	p := NewNamesParams(false)
	err := t.TopDown(from, func(_ *urdf.Model, p Params) (Action, error) {
		np := p.(*NamesParams)
		np.Names = append(np.Names, np.Link.Name)
		return Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return p.Names, nil
}

// HasFixedJoints reports whether any joint below from is fixed.
func (t *Traverser) HasFixedJoints(from string) (bool, error) {
	p := &FlagParams{}
	err := t.TopDown(from, func(_ *urdf.Model, p Params) (Action, error) {
		fp := p.(*FlagParams)
		for _, j := range fp.Link.ChildJoints {
			if j.Type == urdf.JointFixed {
				fp.Flag = true
				return Stop, nil
			}
		}
		return Continue, nil
	}, p)
	return p.Flag, err
}

// FindLink returns the first link in pre-order below (and including) from
// for which match returns true, or nil.
func (t *Traverser) FindLink(from string, match func(*urdf.Link) bool) (*urdf.Link, error) {
	p := &LinkParams{}
	err := t.TopDown(from, func(_ *urdf.Model, p Params) (Action, error) {
		lp := p.(*LinkParams)
		if match(lp.Link) {
			lp.Result = lp.Link
			return Stop, nil
		}
		return Continue, nil
	}, p)
	if err != nil {
		return nil, err
	}
	return p.Result, nil
}

// Deepest returns the link furthest from from and its depth. Ties go to the
// link visited first.
func (t *Traverser) Deepest(from string) (*urdf.Link, int, error) {
	p := &LinkParams{}
	maxDepth := -1
	err := t.TopDown(from, func(_ *urdf.Model, p Params) (Action, error) {
		lp := p.(*LinkParams)
		if lp.Depth > maxDepth {
			maxDepth = lp.Depth
			lp.Result = lp.Link
		}
		return Continue, nil
	}, p)
	if err != nil {
		return nil, 0, err
	}
	return p.Result, maxDepth, nil
}

// RemoveSubtree removes from and every link below it, together with their
// joints, and returns the removed link names in removal order.
func (t *Traverser) RemoveSubtree(from string) ([]string, error) {
	l, err := t.Resolve(from)
	if err != nil {
		return nil, err
	}
	if l == t.model.Root() {
		return nil, fmt.Errorf("%w: %q", urdf.ErrRemoveRoot, from)
	}

	var removed []string
	p := NewModelParams(t.model)
	err = t.BottomUp(from, func(_ *urdf.Model, p Params) (Action, error) {
		mp := p.(*ModelParams)
		name := mp.Link.Name
		if err := mp.Model.RemoveLink(name); err != nil {
			return Stop, err
		}
		removed = append(removed, name)
		return Continue, nil
	}, p)
	return removed, err
}

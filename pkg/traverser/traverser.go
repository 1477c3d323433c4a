// Package traverser walks the link tree of a robot model.
//
// One engine serves every algorithm: the Operation does the per-link work and
// keeps its result in a Params variant, while the engine resolves the start
// link, visits links in order and keeps Params.Current() up to date.
package traverser

import (
	"errors"
	"fmt"

	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// ErrLinkNotFound is returned when the start link does not resolve.
var ErrLinkNotFound = errors.New("link not found")

// Action tells the engine how to continue after an operation returned.
type Action int

const (
	// Continue descends into the children of the current link.
	Continue Action = iota
	// SkipChildren continues with the next sibling. Bottom-up walks treat it as Continue.
	SkipChildren
	// Stop ends the whole walk without error.
	Stop
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Continue:
		return "Continue"
	case SkipChildren:
		return "SkipChildren"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Operation is applied to one link per step; p.Current() holds the link and depth.
// A non-nil error aborts the walk.
type Operation func(m *urdf.Model, p Params) (Action, error)

// Traverser runs walks over one model. A model must only be walked by one
// traversal at a time; ModelParams grants mutation rights to the running walk.
type Traverser struct {
	model *urdf.Model
}

// New creates a traverser for m. m must have been initialised with InitTree.
func New(m *urdf.Model) *Traverser {
	return &Traverser{model: m}
}

// Model returns the model being walked.
func (t *Traverser) Model() *urdf.Model {
	return t.model
}

// Resolve returns the link called name, or ErrLinkNotFound.
func (t *Traverser) Resolve(name string) (*urdf.Link, error) {
	l, ok := t.model.Link(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLinkNotFound, name)
	}
	return l, nil
}

// RootName returns the name of the root link, or "" for an uninitialised model.
func (t *Traverser) RootName() string {
	if r := t.model.Root(); r != nil {
		return r.Name
	}
	return ""
}

// TopDown walks the subtree rooted at start in pre-order: op runs on a link
// before any of its children. The start link is visited at depth 0.
func (t *Traverser) TopDown(start string, op Operation, p Params) error {
	l, err := t.Resolve(start)
	if err != nil {
		return err
	}
	_, err = t.topDown(l, 0, op, p)
	return err
}

// BottomUp walks the subtree rooted at start in post-order: op runs on a link
// after all of its children. Links may be detached from the model by op.
func (t *Traverser) BottomUp(start string, op Operation, p Params) error {
	l, err := t.Resolve(start)
	if err != nil {
		return err
	}
	_, err = t.bottomUp(l, 0, op, p)
	return err
}

func (t *Traverser) topDown(l *urdf.Link, depth int, op Operation, p Params) (bool, error) {
	p.Current().set(l, depth)
	action, err := op(t.model, p)
	if err != nil {
		return true, fmt.Errorf("link %q: %w", l.Name, err)
	}
	switch action {
	case Stop:
		return true, nil
	case SkipChildren:
		return false, nil
	}

	for _, child := range l.Children() {
		stop, err := t.topDown(child, depth+1, op, p)
		if stop || err != nil {
			return true, err
		}
	}
	return false, nil
}

func (t *Traverser) bottomUp(l *urdf.Link, depth int, op Operation, p Params) (bool, error) {
	for _, child := range l.Children() {
		stop, err := t.bottomUp(child, depth+1, op, p)
		if stop || err != nil {
			return true, err
		}
	}

	p.Current().set(l, depth)
	action, err := op(t.model, p)
	if err != nil {
		return true, fmt.Errorf("link %q: %w", l.Name, err)
	}
	return action == Stop, nil
}

package traverser

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// Params is the state threaded through one walk. The set of implementations is
// closed: LinkParams, NamesParams, FactorParams, FlagParams and ModelParams.
type Params interface {
	// Current returns the fields the engine updates at every step.
	Current() *Base
	isParams()
}

// Base holds the fields shared by every Params variant.
type Base struct {
	// Link is the link the current step is applied on. Not owned.
	Link *urdf.Link
	// Depth is the distance from the link the walk started on.
	Depth int
}

// Current implements Params.
func (b *Base) Current() *Base { return b }

func (b *Base) set(l *urdf.Link, depth int) {
	b.Link = l
	b.Depth = depth
}

// LinkParams carries a single resulting link, e.g. the hit of a search.
type LinkParams struct {
	Base
	Result *urdf.Link
}

// NamesParams collects names, e.g. of joints, in visiting order.
type NamesParams struct {
	Base
	// SkipFixed skips fixed joints and collects only movable ones.
	SkipFixed bool
	Names     []string
}

// NewNamesParams creates a NamesParams. The skip flag has no default.
func NewNamesParams(skipFixed bool) *NamesParams {
	return &NamesParams{SkipFixed: skipFixed}
}

// FactorParams carries a numeric factor, e.g. for scaling.
type FactorParams struct {
	Base
	Factor float64
}

// NewFactorParams creates a FactorParams.
func NewFactorParams(factor float64) *FactorParams {
	return &FactorParams{Factor: factor}
}

// FlagParams carries a boolean result.
type FlagParams struct {
	Base
	Flag bool
}

// ModelParams gives the operation the model itself, so that it may add or
// remove links while the walk holding it is running.
type ModelParams struct {
	Base
	Model *urdf.Model
}

// NewModelParams creates a ModelParams for m.
func NewModelParams(m *urdf.Model) *ModelParams {
	return &ModelParams{Model: m}
}

func (*LinkParams) isParams()   {}
func (*NamesParams) isParams()  {}
func (*FactorParams) isParams() {}
func (*FlagParams) isParams()   {}
func (*ModelParams) isParams()  {}

// Clone returns a copy of p whose accumulator is independent of p's.
// The current link, a found link and the model stay shared references.
func Clone(p Params) Params {
	switch src := p.(type) {
	case *LinkParams:
		c := *src
		return &c
	case *NamesParams:
		c := &NamesParams{Base: src.Base, SkipFixed: src.SkipFixed}
		if src.Names == nil {
			return c
		}
		if err := copier.CopyWithOption(&c.Names, &src.Names, copier.Option{DeepCopy: true}); err != nil {
			panic(fmt.Sprintf("traverser: cloning names: %v", err))
		}
		return c
	case *FactorParams:
		c := *src
		return &c
	case *FlagParams:
		c := *src
		return &c
	case *ModelParams:
		c := *src
		return &c
	}
	panic(fmt.Sprintf("traverser: unknown params type %T", p))
}

// Kind returns a short name for the variant of p, used in log fields.
func Kind(p Params) string {
	switch p.(type) {
	case *LinkParams:
		return "link"
	case *NamesParams:
		return "names"
	case *FactorParams:
		return "factor"
	case *FlagParams:
		return "flag"
	case *ModelParams:
		return "model"
	}
	return "unknown"
}

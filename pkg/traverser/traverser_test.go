package traverser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

const treeURDF = `<robot name="tree">
  <link name="base"/>
  <link name="a"/>
  <link name="a1"/>
  <link name="a1x"/>
  <link name="b"/>
  <joint name="j_a" type="revolute"><parent link="base"/><child link="a"/></joint>
  <joint name="j_a1" type="fixed"><parent link="a"/><child link="a1"/></joint>
  <joint name="j_a1x" type="continuous"><parent link="a1"/><child link="a1x"/></joint>
  <joint name="j_b" type="prismatic"><parent link="base"/><child link="b"/></joint>
</robot>`

func newTestTraverser(t *testing.T) *Traverser {
	t.Helper()
	m, err := urdf.Parse([]byte(treeURDF))
	require.NoError(t, err)
	return New(m)
}

type visit struct {
	Link  string
	Depth int
}

func recordVisits(visits *[]visit) Operation {
	return func(_ *urdf.Model, p Params) (Action, error) {
		b := p.Current()
		*visits = append(*visits, visit{b.Link.Name, b.Depth})
		return Continue, nil
	}
}

func TestTopDown_PreOrderWithDepth(t *testing.T) {
	tr := newTestTraverser(t)

	var visits []visit
	require.NoError(t, tr.TopDown("base", recordVisits(&visits), &FlagParams{}))

	assert.Equal(t, []visit{
		{"base", 0}, {"a", 1}, {"a1", 2}, {"a1x", 3}, {"b", 1},
	}, visits)
}

func TestTopDown_StartsAtDepthZero(t *testing.T) {
	tests := []struct {
		start string
		want  []visit
	}{
		{"a", []visit{{"a", 0}, {"a1", 1}, {"a1x", 2}}},
		{"a1", []visit{{"a1", 0}, {"a1x", 1}}},
		{"b", []visit{{"b", 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			tr := newTestTraverser(t)
			var visits []visit
			require.NoError(t, tr.TopDown(tt.start, recordVisits(&visits), &FlagParams{}))
			assert.Equal(t, tt.want, visits)
		})
	}
}

func TestTopDown_VisitsEachLinkOnce(t *testing.T) {
	tr := newTestTraverser(t)

	seen := make(map[string]int)
	err := tr.TopDown("base", func(_ *urdf.Model, p Params) (Action, error) {
		seen[p.Current().Link.Name]++
		return Continue, nil
	}, &FlagParams{})
	require.NoError(t, err)

	assert.Len(t, seen, len(tr.Model().Links))
	for name, n := range seen {
		assert.Equal(t, 1, n, "link %s", name)
	}
}

func TestTopDown_LinkNotFound(t *testing.T) {
	tr := newTestTraverser(t)

	calls := 0
	err := tr.TopDown("missing", func(_ *urdf.Model, _ Params) (Action, error) {
		calls++
		return Continue, nil
	}, &FlagParams{})

	assert.True(t, errors.Is(err, ErrLinkNotFound), "got %v", err)
	assert.Zero(t, calls)
}

func TestTopDown_SkipChildrenAndStop(t *testing.T) {
	tr := newTestTraverser(t)

	var visits []visit
	err := tr.TopDown("base", func(m *urdf.Model, p Params) (Action, error) {
		b := p.Current()
		visits = append(visits, visit{b.Link.Name, b.Depth})
		if b.Link.Name == "a" {
			return SkipChildren, nil
		}
		return Continue, nil
	}, &FlagParams{})
	require.NoError(t, err)
	assert.Equal(t, []visit{{"base", 0}, {"a", 1}, {"b", 1}}, visits)

	visits = nil
	err = tr.TopDown("base", func(m *urdf.Model, p Params) (Action, error) {
		b := p.Current()
		visits = append(visits, visit{b.Link.Name, b.Depth})
		if b.Link.Name == "a1" {
			return Stop, nil
		}
		return Continue, nil
	}, &FlagParams{})
	require.NoError(t, err)
	assert.Equal(t, []visit{{"base", 0}, {"a", 1}, {"a1", 2}}, visits)
}

func TestTopDown_ErrorAborts(t *testing.T) {
	tr := newTestTraverser(t)
	boom := errors.New("boom")

	var visited []string
	err := tr.TopDown("base", func(_ *urdf.Model, p Params) (Action, error) {
		visited = append(visited, p.Current().Link.Name)
		if p.Current().Link.Name == "a1" {
			return Continue, boom
		}
		return Continue, nil
	}, &FlagParams{})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"a1"`)
	assert.Equal(t, []string{"base", "a", "a1"}, visited)
}

func TestBottomUp_PostOrder(t *testing.T) {
	tr := newTestTraverser(t)

	var visits []visit
	require.NoError(t, tr.BottomUp("base", recordVisits(&visits), &FlagParams{}))

	assert.Equal(t, []visit{
		{"a1x", 3}, {"a1", 2}, {"a", 1}, {"b", 1}, {"base", 0},
	}, visits)
}

func TestBottomUp_LinkNotFound(t *testing.T) {
	tr := newTestTraverser(t)
	err := tr.BottomUp("nope", recordVisits(new([]visit)), &FlagParams{})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestSharedParamsAccumulateAcrossWalk(t *testing.T) {
	tr := newTestTraverser(t)

	p := NewFactorParams(2)
	total := 0.0
	err := tr.TopDown("base", func(_ *urdf.Model, p Params) (Action, error) {
		total += p.(*FactorParams).Factor
		return Continue, nil
	}, p)
	require.NoError(t, err)
	assert.Equal(t, 10.0, total)
	assert.Equal(t, "b", p.Link.Name, "params should hold the last visited link")
}

package convert

import (
	"errors"
	gomath "math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/urdf2iv/internal/meshconv"
	"github.com/Faultbox/urdf2iv/pkg/math"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

const armURDF = `<robot name="arm">
  <link name="base">
    <visual>
      <origin xyz="0 0 0.1"/>
      <geometry><mesh filename="package://arm/meshes/base.obj"/></geometry>
    </visual>
  </link>
  <link name="upper">
    <visual name="shell">
      <geometry><mesh filename="meshes/upper.obj" scale="0.5 0.5 0.5"/></geometry>
    </visual>
    <visual name="cover">
      <geometry><mesh filename="meshes/cover.obj"/></geometry>
    </visual>
    <visual name="pin">
      <origin xyz="0.2 0 0"/>
      <geometry><cylinder radius="0.1" length="0.4"/></geometry>
      <material name="red"><color rgba="1 0 0 1"/></material>
    </visual>
  </link>
  <link name="tool">
    <collision><geometry><box size="1 1 1"/></geometry></collision>
  </link>
  <joint name="shoulder" type="revolute">
    <parent link="base"/><child link="upper"/>
    <origin xyz="0 0 1"/>
  </joint>
  <joint name="flange" type="fixed">
    <parent link="upper"/><child link="tool"/>
  </joint>
</robot>`

// fakeConverter returns canned results per mesh base name and records requests.
type fakeConverter struct {
	textures map[string][]string
	fail     string
	requests []meshconv.Request
}

func (f *fakeConverter) Convert(req meshconv.Request) (*meshconv.Result, error) {
	f.requests = append(f.requests, req)
	name := filepath.Base(req.Path)
	if name == f.fail {
		return nil, errors.New("importer crashed")
	}
	content := "Separator {\n  Info {\n    string \"" + name + "\"\n  }\n"
	for _, t := range f.textures[name] {
		content += "  Texture2 {\n    filename \"" + t + "\"\n  }\n"
	}
	return &meshconv.Result{Content: content + "}\n", Textures: f.textures[name]}, nil
}

func newArm(t *testing.T) *traverser.Traverser {
	t.Helper()
	m, err := urdf.Parse([]byte(armURDF))
	require.NoError(t, err)
	return traverser.New(m)
}

func armOptions() Options {
	return Options{
		ScaleFactor: 2,
		Extension:   ".iv",
		Correction:  math.Identity(),
		Resolver: &Resolver{
			BaseDir:  "/robots/arm/urdf",
			Packages: map[string]string{"arm": "/robots/arm"},
		},
	}
}

func TestCollectMeshes_PerLink(t *testing.T) {
	conv := &fakeConverter{textures: map[string][]string{
		"base.obj":  {"/robots/arm/tex/base.png"},
		"upper.obj": {"/robots/arm/tex/metal.png", "/robots/arm/tex/logo.png"},
		"cover.obj": {"/robots/arm/tex/metal.png"},
	}}

	col, err := CollectMeshes(newArm(t), "base", armOptions(), conv)
	require.NoError(t, err)

	// tool has only collision geometry.
	assert.Len(t, col.Models, 2)
	assert.NotContains(t, col.Models, "tool")

	// Shared textures appear once in the link's set.
	assert.Equal(t, []string{"/robots/arm/tex/logo.png", "/robots/arm/tex/metal.png"}, col.Textures["upper"].Sorted())
	assert.Equal(t, []string{"/robots/arm/tex/base.png"}, col.Textures["base"].Sorted())

	// Visuals of one link are merged into one document.
	upper := col.Models["upper"]
	assert.True(t, strings.HasPrefix(upper, "#Inventor V2.1 ascii"))
	assert.Equal(t, 1, strings.Count(upper, "#Inventor"))
	assert.Contains(t, upper, "DEF upper Separator")
	assert.Contains(t, upper, `string "upper.obj"`)
	assert.Contains(t, upper, `string "cover.obj"`)
	assert.Contains(t, upper, "Cylinder {\n      radius 0.2\n      height 0.8")
	assert.Contains(t, upper, "diffuseColor 1 0 0")

	require.Len(t, conv.requests, 3)
	assert.Equal(t, "/robots/arm/meshes/base.obj", conv.requests[0].Path)
	assert.Equal(t, "/robots/arm/urdf/meshes/upper.obj", conv.requests[1].Path)
	assert.Equal(t, [3]float64{1, 1, 1}, conv.requests[1].Scale)
	assert.Equal(t, [3]float64{2, 2, 2}, conv.requests[2].Scale)
	assert.Equal(t, ".iv", conv.requests[0].Extension)
}

func TestCollectMeshes_Subtree(t *testing.T) {
	conv := &fakeConverter{}
	col, err := CollectMeshes(newArm(t), "upper", armOptions(), conv)
	require.NoError(t, err)

	assert.NotContains(t, col.Models, "base")
	assert.Contains(t, col.Models, "upper")
	assert.Empty(t, col.Textures)
}

func TestCollectMeshes_CorrectionPostMultiplied(t *testing.T) {
	opts := armOptions()
	opts.Correction = math.NewPose([3]float64{}, [3]float64{gomath.Pi / 2, 0, 0})

	col, err := CollectMeshes(newArm(t), "base", opts, &fakeConverter{})
	require.NoError(t, err)

	// origin (0 0 0.1) then rotate about the visual's x axis.
	assert.Contains(t, col.Models["base"], "translation 0 0 0.1\n")
	assert.Contains(t, col.Models["base"], "rotation 1 0 0 1.5707964")
}

func TestCollectMeshes_ConversionFailed(t *testing.T) {
	conv := &fakeConverter{fail: "cover.obj"}
	col, err := CollectMeshes(newArm(t), "base", armOptions(), conv)

	require.Error(t, err)
	assert.Nil(t, col)
	assert.True(t, errors.Is(err, ErrConversionFailed))
	assert.Contains(t, err.Error(), "importer crashed")
	assert.Contains(t, err.Error(), `link "upper"`)
}

func TestCollectMeshes_UnknownPackage(t *testing.T) {
	opts := armOptions()
	opts.Resolver.Packages = nil

	_, err := CollectMeshes(newArm(t), "base", opts, &fakeConverter{})
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestCollectMeshes_LinkNotFound(t *testing.T) {
	conv := &fakeConverter{}
	_, err := CollectMeshes(newArm(t), "elbow", armOptions(), conv)

	assert.ErrorIs(t, err, traverser.ErrLinkNotFound)
	assert.Empty(t, conv.requests)
}

func TestCollectMeshes_MaterialOverride(t *testing.T) {
	opts := armOptions()
	opts.Material = "blue"
	conv := &fakeConverter{}

	col, err := CollectMeshes(newArm(t), "upper", opts, conv)
	require.NoError(t, err)
	assert.Equal(t, "blue", conv.requests[0].Material)
	assert.NotContains(t, col.Models["upper"], "diffuseColor 1 0 0")

	opts.Material = "plaid"
	_, err = CollectMeshes(newArm(t), "upper", opts, &fakeConverter{})
	assert.ErrorIs(t, err, ErrConversionFailed)
}

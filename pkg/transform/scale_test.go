package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/Faultbox/urdf2iv/pkg/math"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

const scaleURDF = `<robot name="r">
  <link name="base">
    <inertial><origin xyz="0 0 0.5" rpy="0.1 0 0"/><mass value="1"/><inertia ixx="1" iyy="1" izz="1"/></inertial>
    <visual><origin xyz="0.1 0.2 0.3" rpy="0.3 0.2 0.1"/><geometry><mesh filename="base.stl"/></geometry></visual>
    <collision><origin xyz="1 1 1"/><geometry><box size="1 1 1"/></geometry></collision>
  </link>
  <link name="arm">
    <visual><origin xyz="0 0 0.25"/><geometry><cylinder radius="0.1" length="0.5"/></geometry></visual>
  </link>
  <link name="hand">
    <visual><origin xyz="0.05 0 0" rpy="0 1.2 0"/><geometry><mesh filename="hand.stl" scale="2 2 2"/></geometry></visual>
  </link>
  <joint name="shoulder" type="revolute">
    <origin xyz="1 0 0" rpy="0 0 0.7"/>
    <parent link="base"/><child link="arm"/>
  </joint>
  <joint name="wrist" type="fixed">
    <origin xyz="0 0 0.5"/>
    <parent link="arm"/><child link="hand"/>
  </joint>
</robot>`

func loadModel(t *testing.T) *urdf.Model {
	t.Helper()
	m, err := urdf.Parse([]byte(scaleURDF))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestScaleModel_JointTranslation(t *testing.T) {
	m := loadModel(t)

	if err := ScaleModel(m, 2.0); err != nil {
		t.Fatalf("ScaleModel failed: %v", err)
	}

	j, _ := m.Joint("shoulder")
	want := mgl64.Vec3{2, 0, 0}
	if !pmath.VecApproxEqual(j.Origin.Position, want, 1e-12) {
		t.Errorf("joint translation: got %v, want %v", j.Origin.Position, want)
	}
	wrist, _ := m.Joint("wrist")
	if !pmath.VecApproxEqual(wrist.Origin.Position, mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("wrist translation: got %v, want (0,0,1)", wrist.Origin.Position)
	}
}

func TestScaleModel_LinkOrigins(t *testing.T) {
	m := loadModel(t)

	if err := ScaleModel(m, 10); err != nil {
		t.Fatalf("ScaleModel failed: %v", err)
	}

	base, _ := m.Link("base")
	tests := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"visual", base.Visuals[0].Origin.Position, mgl64.Vec3{1, 2, 3}},
		{"collision", base.Collisions[0].Origin.Position, mgl64.Vec3{10, 10, 10}},
		{"inertial", base.Inertial.Origin.Position, mgl64.Vec3{0, 0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !pmath.VecApproxEqual(tt.got, tt.want, 1e-9) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	hand, _ := m.Link("hand")
	if hand.Visuals[0].Geometry.Scale != [3]float64{2, 2, 2} {
		t.Errorf("mesh scale must not change, got %v", hand.Visuals[0].Geometry.Scale)
	}
}

func TestScaleSubtree_LeavesIncomingJoint(t *testing.T) {
	m := loadModel(t)
	tr := traverser.New(m)

	if err := ScaleSubtree(tr, "arm", 3); err != nil {
		t.Fatalf("ScaleSubtree failed: %v", err)
	}

	shoulder, _ := m.Joint("shoulder")
	if !pmath.VecApproxEqual(shoulder.Origin.Position, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("incoming joint must not be scaled, got %v", shoulder.Origin.Position)
	}
	wrist, _ := m.Joint("wrist")
	if !pmath.VecApproxEqual(wrist.Origin.Position, mgl64.Vec3{0, 0, 1.5}, 1e-9) {
		t.Errorf("wrist: got %v, want (0,0,1.5)", wrist.Origin.Position)
	}
	arm, _ := m.Link("arm")
	if !pmath.VecApproxEqual(arm.Visuals[0].Origin.Position, mgl64.Vec3{0, 0, 0.75}, 1e-9) {
		t.Errorf("arm visual: got %v", arm.Visuals[0].Origin.Position)
	}
	base, _ := m.Link("base")
	if !pmath.VecApproxEqual(base.Visuals[0].Origin.Position, mgl64.Vec3{0.1, 0.2, 0.3}, 1e-12) {
		t.Errorf("links above the subtree must not change, got %v", base.Visuals[0].Origin.Position)
	}
}

func TestScale_RoundTripKeepsRotations(t *testing.T) {
	m := loadModel(t)
	orig := loadModel(t)

	factor := 7.3
	if err := ScaleModel(m, factor); err != nil {
		t.Fatalf("scale up failed: %v", err)
	}
	if err := ScaleModel(m, 1/factor); err != nil {
		t.Fatalf("scale down failed: %v", err)
	}

	for _, j := range orig.Joints {
		got, _ := m.Joint(j.Name)
		if !pmath.VecApproxEqual(got.Origin.Position, j.Origin.Position, 1e-12) {
			t.Errorf("joint %s translation: got %v, want %v", j.Name, got.Origin.Position, j.Origin.Position)
		}
		if got.Origin.Rotation != j.Origin.Rotation {
			t.Errorf("joint %s rotation changed: got %v, want %v", j.Name, got.Origin.Rotation, j.Origin.Rotation)
		}
	}
	for _, l := range orig.Links {
		got, _ := m.Link(l.Name)
		for i, v := range l.Visuals {
			gv := got.Visuals[i]
			if math.Abs(gv.Origin.Position.Sub(v.Origin.Position).Len()) > 1e-12 {
				t.Errorf("link %s visual %d translation: got %v, want %v", l.Name, i, gv.Origin.Position, v.Origin.Position)
			}
			if gv.Origin.Rotation != v.Origin.Rotation {
				t.Errorf("link %s visual %d rotation changed", l.Name, i)
			}
		}
	}
}

func TestScaleSubtree_LinkNotFound(t *testing.T) {
	m := loadModel(t)
	err := ScaleSubtree(traverser.New(m), "nope", 2)
	if !errors.Is(err, traverser.ErrLinkNotFound) {
		t.Errorf("expected ErrLinkNotFound, got %v", err)
	}
}

// Package math provides rigid-body transform math for robot descriptions.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a rigid transform: a rotation followed by a translation.
// URDF calls this an "origin".
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns a pose with no translation and no rotation.
func Identity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// NewPose creates a pose from a translation and fixed-axis roll/pitch/yaw angles (radians).
func NewPose(xyz, rpy [3]float64) Pose {
	return Pose{
		Position: mgl64.Vec3{xyz[0], xyz[1], xyz[2]},
		Rotation: FromRPY(rpy[0], rpy[1], rpy[2]),
	}
}

// Translation returns a pose that only translates.
func Translation(x, y, z float64) Pose {
	return Pose{Position: mgl64.Vec3{x, y, z}, Rotation: mgl64.QuatIdent()}
}

// FromRPY builds a quaternion from fixed-axis roll (X), pitch (Y) and yaw (Z).
// The resulting rotation is Rz(yaw) * Ry(pitch) * Rx(roll).
func FromRPY(roll, pitch, yaw float64) mgl64.Quat {
	qx := mgl64.QuatRotate(roll, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(pitch, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

// ToRPY converts a quaternion back to fixed-axis roll, pitch and yaw.
func ToRPY(q mgl64.Quat) (roll, pitch, yaw float64) {
	q = q.Normalize()
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// RPY returns the pose rotation as roll, pitch, yaw.
func (p Pose) RPY() [3]float64 {
	r, pi, y := ToRPY(p.Rotation)
	return [3]float64{r, pi, y}
}

// Mul composes two poses: the result applies o in the frame of p.
func (p Pose) Mul(o Pose) Pose {
	return Pose{
		Position: p.Position.Add(p.Rotation.Rotate(o.Position)),
		Rotation: p.Rotation.Mul(o.Rotation).Normalize(),
	}
}

// Inverse returns the inverse transform.
func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(p.Position).Mul(-1),
		Rotation: inv,
	}
}

// ScaleTranslation returns a copy with the translation multiplied by factor.
// The rotation is copied unchanged.
func (p Pose) ScaleTranslation(factor float64) Pose {
	return Pose{Position: p.Position.Mul(factor), Rotation: p.Rotation}
}

// TransformPoint applies the pose to a point.
func (p Pose) TransformPoint(v mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(v).Add(p.Position)
}

// Mat4 returns the homogeneous matrix of the pose.
func (p Pose) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Rotation.Mat4())
}

// AxisAngle returns the rotation as a unit axis and an angle in radians.
// A zero rotation is reported around +Z.
func (p Pose) AxisAngle() (mgl64.Vec3, float64) {
	q := p.Rotation.Normalize()
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	w := math.Min(1, q.W)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return mgl64.Vec3{0, 0, 1}, 0
	}
	return q.V.Mul(1 / s), angle
}

// IsIdentity reports whether the pose neither translates nor rotates.
func (p Pose) IsIdentity() bool {
	return p.ApproxEqual(Identity(), 1e-12)
}

// ApproxEqual compares two poses component-wise within the absolute
// tolerance eps. q and -q describe the same rotation and compare equal.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	if !VecApproxEqual(p.Position, o.Position, eps) {
		return false
	}
	a, b := p.Rotation, o.Rotation
	if math.Abs(a.W-b.W) <= eps && VecApproxEqual(a.V, b.V, eps) {
		return true
	}
	return math.Abs(a.W+b.W) <= eps && VecApproxEqual(a.V, b.V.Mul(-1), eps)
}

// VecApproxEqual reports whether every component of a and b differs by at most eps.
func VecApproxEqual(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Package geom holds the vector and rotation helpers shared by the movement code.
// World space is Z-up with X forward and Y right.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	SmallNumber      = 1e-8
	KindaSmallNumber = 1e-4
	// ParallelThreshold is the minimum |cos| between two unit vectors considered parallel.
	ParallelThreshold = 0.999845
)

var (
	Up      = mgl64.Vec3{0, 0, 1}
	Down    = mgl64.Vec3{0, 0, -1}
	Forward = mgl64.Vec3{1, 0, 0}
	Right   = mgl64.Vec3{0, 1, 0}
)

func IsNearlyZero(v float64) bool {
	return math.Abs(v) <= SmallNumber
}

func IsZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// SafeNormal returns v normalized, or the zero vector when v is too short to normalize.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	sq := v.LenSqr()
	if sq == 1 {
		return v
	}
	if sq < SmallNumber {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / math.Sqrt(sq))
}

// SafeNormal2D normalizes the horizontal part of v.
func SafeNormal2D(v mgl64.Vec3) mgl64.Vec3 {
	return SafeNormal(mgl64.Vec3{v[0], v[1], 0})
}

func Size2D(v mgl64.Vec3) float64 {
	return math.Hypot(v[0], v[1])
}

// ProjectOnTo projects v onto the direction of onto. A zero onto yields zero.
func ProjectOnTo(v, onto mgl64.Vec3) mgl64.Vec3 {
	d := onto.LenSqr()
	if d < SmallNumber {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / d)
}

func Parallel(a, b mgl64.Vec3) bool {
	return math.Abs(a.Dot(b)) >= ParallelThreshold
}

func DistSquared(a, b mgl64.Vec3) float64 {
	return a.Sub(b).LenSqr()
}

// AngleDegrees is the angle between two unit vectors.
func AngleDegrees(a, b mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Acos(mgl64.Clamp(a.Dot(b), -1, 1)))
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LookRotation builds a roll-free rotation whose forward axis is dir.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	f := SafeNormal(dir)
	if IsZero(f) {
		return mgl64.QuatIdent()
	}
	yaw := math.Atan2(f[1], f[0])
	pitch := math.Atan2(f[2], math.Hypot(f[0], f[1]))
	return mgl64.QuatRotate(yaw, Up).Mul(mgl64.QuatRotate(-pitch, Right))
}

// YawOnly strips pitch and roll from q.
func YawOnly(q mgl64.Quat) mgl64.Quat {
	f := q.Rotate(Forward)
	if Size2D(f) < KindaSmallNumber {
		r := q.Rotate(Right)
		return mgl64.QuatRotate(math.Atan2(r[1], r[0])-math.Pi/2, Up)
	}
	return mgl64.QuatRotate(math.Atan2(f[1], f[0]), Up)
}

// QInterpTo moves current towards target at speed*dt of the remaining arc per call.
func QInterpTo(current, target mgl64.Quat, dt, speed float64) mgl64.Quat {
	if speed <= 0 {
		return target
	}
	if current.Dot(target) < 0 {
		target = target.Scale(-1)
	}
	if current.ApproxEqualThreshold(target, SmallNumber) {
		return target
	}
	alpha := mgl64.Clamp(speed*dt, 0, 1)
	return mgl64.QuatSlerp(current, target, alpha).Normalize()
}

// Unrotate expresses a world vector in the local frame of q.
func Unrotate(q mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 {
	return q.Conjugate().Rotate(v)
}

// Package world defines the collision query surface the movement code runs against.
package world

import "github.com/go-gl/mathgl/mgl64"

// BodyID identifies a collision body. Zero is "no body".
type BodyID uint64

// Channel is a collision channel bit. A body blocks a query when their channels intersect.
type Channel uint32

const (
	ChannelWorldStatic Channel = 1 << iota
	ChannelPawn
	ChannelVisibility
	ChannelClimbable

	ChannelAll Channel = 0xFFFFFFFF
)

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota + 1
	ShapeCapsule
)

// Shape is a swept primitive. For a sphere HalfHeight is ignored.
// A capsule's HalfHeight includes the hemispherical caps.
type Shape struct {
	Kind       ShapeKind
	Radius     float64
	HalfHeight float64
}

func Sphere(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func Capsule(radius, halfHeight float64) Shape {
	return Shape{Kind: ShapeCapsule, Radius: radius, HalfHeight: max(halfHeight, radius)}
}

// Hit describes one contact.
//
// Location is where the shape's centre rests at impact, ImpactPoint is the contact
// point on the other body. For a line trace both are equal, as are Normal and
// ImpactNormal. TraceStart and TraceEnd are filled even when nothing was hit.
type Hit struct {
	Blocking     bool
	Time         float64
	Distance     float64
	Location     mgl64.Vec3
	ImpactPoint  mgl64.Vec3
	Normal       mgl64.Vec3
	ImpactNormal mgl64.Vec3
	TraceStart   mgl64.Vec3
	TraceEnd     mgl64.Vec3
	Body         BodyID

	// StartPenetrating is set when the shape already overlapped the body at the start.
	StartPenetrating bool
}

// Miss returns a non-blocking hit for a trace that found nothing.
func Miss(start, end mgl64.Vec3) Hit {
	return Hit{Time: 1, Location: end, TraceStart: start, TraceEnd: end}
}

type QueryParams struct {
	Ignore []BodyID

	// SkipSeparating drops initial overlaps the sweep moves out of, so a body resting
	// against geometry can step away from it. Room checks leave it unset.
	SkipSeparating bool
}

func (p QueryParams) Ignores(id BodyID) bool {
	for _, ig := range p.Ignore {
		if ig == id {
			return true
		}
	}
	return false
}

// Query answers shape sweeps and ray traces against static world geometry.
type Query interface {
	// SweepMulti returns every blocking hit along the sweep ordered by time.
	SweepMulti(shape Shape, start, end mgl64.Vec3, rot mgl64.Quat, ch Channel, params QueryParams) []Hit
	// SweepSingle returns the first blocking hit along the sweep.
	SweepSingle(shape Shape, start, end mgl64.Vec3, rot mgl64.Quat, ch Channel, params QueryParams) (Hit, bool)
	// LineTrace returns the first blocking hit along the segment, or a miss.
	LineTrace(start, end mgl64.Vec3, ch Channel, params QueryParams) Hit
}

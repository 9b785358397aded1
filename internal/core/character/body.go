package character

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/world"
)

type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (c Capsule) Shape() world.Shape {
	return world.Capsule(c.Radius, c.HalfHeight)
}

// Body is the actor state the movement code reads and writes. Position is the
// capsule centre.
type Body struct {
	ID           world.BodyID
	Position     mgl64.Vec3
	Rotation     mgl64.Quat
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3
	Capsule      Capsule
	EyeHeight    float64

	OrientToMovement bool
}

func NewBody(id world.BodyID, position mgl64.Vec3, cfg Config) *Body {
	return &Body{
		ID:       id,
		Position: position,
		Rotation: mgl64.QuatIdent(),
		Capsule: Capsule{
			Radius:     cfg.CapsuleRadius,
			HalfHeight: cfg.CapsuleHalfHeight,
		},
		EyeHeight:        cfg.EyeHeight,
		OrientToMovement: true,
	}
}

func (b *Body) Forward() mgl64.Vec3 { return b.Rotation.Rotate(geom.Forward) }
func (b *Body) Right() mgl64.Vec3   { return b.Rotation.Rotate(geom.Right) }
func (b *Body) Up() mgl64.Vec3      { return b.Rotation.Rotate(geom.Up) }

// Feet is the bottom of the capsule measured along world up.
func (b *Body) Feet() mgl64.Vec3 {
	return b.Position.Sub(geom.Up.Mul(b.Capsule.HalfHeight))
}

// Unrotate expresses v in the body's local frame.
func (b *Body) Unrotate(v mgl64.Vec3) mgl64.Vec3 {
	return geom.Unrotate(b.Rotation, v)
}

// UnrotatedVelocity is the velocity in the body's local frame.
func (b *Body) UnrotatedVelocity() mgl64.Vec3 {
	return b.Unrotate(b.Velocity)
}

func (b *Body) Facing(dir mgl64.Vec3) {
	b.Rotation = geom.LookRotation(dir)
}

package climb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
)

// shouldMoveMinSpeed is the ground speed above which a character with input is moving.
const shouldMoveMinSpeed = 3

// AnimState is the per-tick snapshot an animation graph selects poses from.
type AnimState struct {
	GroundSpeed float64
	AirSpeed    float64
	// ClimbVelocity is the velocity in the body frame.
	ClimbVelocity mgl64.Vec3
	ShouldMove    bool
	IsFalling     bool
	IsClimbing    bool
}

func (c *Component) AnimState() AnimState {
	b := c.body
	ground := geom.Size2D(b.Velocity)
	return AnimState{
		GroundSpeed:   ground,
		AirSpeed:      b.Velocity[2],
		ClimbVelocity: b.UnrotatedVelocity(),
		ShouldMove:    !geom.IsZero(b.Acceleration) && ground > shouldMoveMinSpeed,
		IsFalling:     c.IsFalling(),
		IsClimbing:    c.IsClimbing(),
	}
}

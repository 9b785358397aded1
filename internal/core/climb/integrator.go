package climb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/geom"
)

// climbing is the Locomotion strategy registered for character.ModeClimbing.
type climbing struct {
	c *Component
}

func (l *climbing) MaxSpeed() float64        { return l.c.cfg.Physics.MaxClimbSpeed }
func (l *climbing) MaxAcceleration() float64 { return l.c.cfg.Physics.MaxClimbAcceleration }

func (l *climbing) Phys(dt float64, iterations int) {
	l.c.physClimbing(dt, iterations)
}

func (c *Component) physClimbing(dt float64, _ int) {
	if dt < character.MinTickTime {
		return
	}
	c.hits = c.sensor.TraceClimbableSurfaces()
	c.surface = c.sensor.Aggregate(c.hits)

	if c.ShouldStopClimbing() || c.HasReachedTheFloor() {
		c.StopClimbing()
		return
	}

	b := c.body
	rootVel, rootDriven := c.move.RootMotion(dt)
	if rootDriven {
		b.Velocity = rootVel
	} else {
		c.move.CalcVelocity(dt, c.cfg.Physics.Friction, true, c.cfg.Physics.MaxBrakeDeceleration)
	}

	old := b.Position
	delta := b.Velocity.Mul(dt)
	hit := c.move.SafeMove(delta, c.climbRotation(dt, rootDriven))
	if hit.Blocking && hit.Time < 1 {
		c.log.Debug("climb move blocked")
		c.move.SlideAlongSurface(delta, 1-hit.Time, hit.Normal)
	}

	if !rootDriven {
		b.Velocity = b.Position.Sub(old).Mul(1 / dt)
	}

	if c.HasReachedTheLedge() {
		b.Rotation = geom.YawOnly(b.Rotation)
		c.playMontage(TransitionClimbToTop, c.clips.climbToTop)
	}

	c.snapToClimbableSurface(dt)
}

// ClimbRotation is the rotation the next climbing move will use.
func (c *Component) ClimbRotation(dt float64) mgl64.Quat {
	_, rootDriven := c.move.RootMotion(0)
	return c.climbRotation(dt, rootDriven)
}

func (c *Component) climbRotation(dt float64, rootDriven bool) mgl64.Quat {
	current := c.body.Rotation
	if rootDriven || geom.IsZero(c.surface.Normal) {
		return current
	}
	target := geom.LookRotation(c.surface.Normal.Mul(-1))
	return geom.QInterpTo(current, target, dt, c.cfg.Physics.RotationInterpSpeed)
}

// SnapDelta is the displacement that pulls the character towards the grip offset
// from the aggregate surface over dt.
func (c *Component) SnapDelta(dt float64) mgl64.Vec3 {
	b := c.body
	proj := geom.ProjectOnTo(c.surface.Location.Sub(b.Position), b.Forward()).Len()
	snap := c.surface.Normal.Mul(-(proj - c.cfg.Physics.GripOffset))
	speed := c.cfg.Physics.SnapSpeedScale * (b.Velocity.Len()/c.cfg.Physics.MaxClimbSpeed + 1)
	return snap.Mul(speed * dt)
}

func (c *Component) snapToClimbableSurface(dt float64) {
	if c.dashPlaying() || c.dashInProgress {
		return
	}
	c.move.SafeMove(c.SnapDelta(dt), c.body.Rotation)
}

func (c *Component) dashPlaying() bool {
	if c.anim == nil {
		return false
	}
	for _, id := range c.clips.dash {
		if c.anim.IsPlaying(id) {
			return true
		}
	}
	return false
}

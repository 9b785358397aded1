package climb

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/log"
)

// SurfaceAssessment describes one hit surface relative to the character's facing.
type SurfaceAssessment struct {
	// AngleDeg is the angle between forward and the inverted horizontal normal.
	AngleDeg float64
	// Steepness is dot(normal, horizontal normal): 1 for a vertical wall, 0 for a floor or ceiling.
	Steepness      float64
	CeilingOrFloor bool
	// EyeTraceLength is how far the eye ray must reach for the surface to be grippable.
	EyeTraceLength float64
}

// AssessSurface classifies a surface normal for climbing. Steeper surfaces need a
// shorter eye trace, flatter ones a longer one.
func AssessSurface(forward, normal mgl64.Vec3, cfg EligibilityConfig) SurfaceAssessment {
	horizontal := geom.SafeNormal2D(normal)
	steepness := normal.Dot(horizontal)
	return SurfaceAssessment{
		AngleDeg:       geom.AngleDegrees(forward, horizontal.Mul(-1)),
		Steepness:      steepness,
		CeilingOrFloor: geom.IsNearlyZero(steepness),
		EyeTraceLength: cfg.EyeTraceBaseLength * (1 + (1-steepness)*cfg.SteepnessScale),
	}
}

// Climbable reports whether the assessed surface passes the angle and floor/ceiling checks.
func (a SurfaceAssessment) Climbable(cfg EligibilityConfig) bool {
	return a.AngleDeg < cfg.MinClimbableAngleDeg && !a.CeilingOrFloor
}

// CanStartClimbing reports whether any hit of the last surface sweep is a grippable
// wall in front of the character.
func (c *Component) CanStartClimbing() bool {
	if c.move.IsFalling() {
		return false
	}
	fwd := c.body.Forward()
	for _, h := range c.hits {
		a := AssessSurface(fwd, h.Normal, c.cfg.Eligibility)
		if !a.Climbable(c.cfg.Eligibility) {
			continue
		}
		if c.sensor.TraceFromEyeHeight(a.EyeTraceLength, 0).Blocking {
			return true
		}
	}
	return false
}

// CanStartClimbingDown reports whether the character stands on a floor that drops
// off just ahead.
func (c *Component) CanStartClimbingDown() bool {
	if c.move.IsFalling() {
		return false
	}
	e := c.cfg.Eligibility
	fwd := c.body.Forward()
	down := c.body.Up().Mul(-1)

	start := c.body.Position.Add(fwd.Mul(e.ClimbDownWalkableOffset))
	walkable := c.sensor.LineTrace(start, start.Add(down.Mul(e.ClimbDownWalkableDepth)))

	ledgeStart := walkable.TraceStart.Add(fwd.Mul(e.ClimbDownLedgeOffset))
	ledge := c.sensor.LineTrace(ledgeStart, ledgeStart.Add(down.Mul(e.ClimbDownLedgeDepth)))

	return walkable.Blocking && !ledge.Blocking
}

// ShouldStopClimbing is true with no surface hits or when the aggregate surface has
// become floor-like or ceiling-like.
func (c *Component) ShouldStopClimbing() bool {
	return shouldStop(c.hits, c.surface.Normal, c.cfg.Eligibility)
}

func shouldStop(hits SurfaceHitSet, normal mgl64.Vec3, cfg EligibilityConfig) bool {
	if len(hits) == 0 {
		return true
	}
	d := normal.Dot(geom.Up)
	return d > cfg.FloorStopDot || d < cfg.CeilingStopDot
}

// HasReachedTheFloor reports a flat floor just below a descending climber.
func (c *Component) HasReachedTheFloor() bool {
	floor := c.sensor.TraceDownwardFloor()
	if len(floor) == 0 {
		return false
	}
	descending := c.body.UnrotatedVelocity()[2] < -c.cfg.Eligibility.FloorReachSpeed
	if !descending {
		return false
	}
	for _, h := range floor {
		if geom.Parallel(h.ImpactNormal, geom.Up) {
			return true
		}
	}
	return false
}

// HasReachedTheLedge looks for a walkable top with standing room above the wall and
// records it as the ledge target. It is true only while the character climbs upward.
// A sloped ledge registers its warp target only when the climb to top will play.
func (c *Component) HasReachedTheLedge() bool {
	if c.anim == nil {
		return false
	}
	if c.anim.IsPlaying(c.clips.climbToTop) {
		return true
	}
	c.clearLedgeWarp()
	e := c.cfg.Eligibility
	up := c.body.Up()
	hh := c.standingHalfHeight

	reach := c.body.Capsule.Radius * e.LedgeTraceRadiusScale
	eye := c.sensor.TraceFromEyeHeight(reach, e.LedgeEyeOffset)
	if eye.Blocking {
		return false
	}

	walkStart := eye.TraceEnd.Add(up.Mul(hh))
	walkable := c.sensor.LineTrace(walkStart, walkStart.Sub(up.Mul(2*hh)))
	if !walkable.Blocking || walkable.Normal[2] < e.WalkableFloorZ {
		return false
	}

	pos := c.body.Position
	roomStart := pos.Add(up.Mul(walkStart.Sub(pos).Dot(up)))
	if !c.sensor.RoomForCapsule(roomStart, walkStart, c.cfg.Surface.CapsuleRadius, hh) {
		return false
	}

	c.ledgeTarget = walkable.Location
	c.ledgeSlopeDeg = geom.AngleDegrees(geom.SafeNormal(walkable.Normal), up)
	if c.body.UnrotatedVelocity()[2] <= e.LedgeReachSpeed {
		return false
	}
	if math.Abs(c.ledgeSlopeDeg) > geom.KindaSmallNumber {
		c.warps.Set(WarpLedge, c.ledgeTarget)
		c.usedLedgeWarp = true
		c.log.Debug("ledge warp registered",
			log.Vec3("target", c.ledgeTarget),
			log.Float64("slope_deg", c.ledgeSlopeDeg),
		)
	}
	return true
}

func (c *Component) clearLedgeWarp() {
	if !c.usedLedgeWarp {
		return
	}
	c.usedLedgeWarp = false
	c.warps.Clear(WarpLedge)
}

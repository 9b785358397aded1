package climb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/log"
)

// CanStartVaulting probes for a low obstacle ahead and returns where the vault
// starts on its top and where it lands beyond it.
func (c *Component) CanStartVaulting() (start, land mgl64.Vec3, ok bool) {
	if c.move.IsFalling() {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	v := c.cfg.Vault
	b := c.body
	fwd := b.Forward()
	up := b.Up()
	down := up.Mul(-1)

	ratio := mgl64.Clamp(b.Velocity.Len()/c.move.MaxSpeed(), 0, 1)
	probe := geom.Lerp(v.MinTraceDistance, v.MaxTraceDistance, ratio)

	obstacleStart := b.Position.Add(up.Mul(v.ProbeHeight)).Add(fwd.Mul(probe))
	obstacle := c.sensor.LineTrace(obstacleStart, obstacleStart.Add(down.Mul(v.ProbeDepth)))
	if !obstacle.Blocking {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	// A hit this close to the probe start is a wall, not a vaultable top.
	if geom.DistSquared(obstacle.Location, obstacle.TraceStart) < v.ProbeDepth*v.ProbeDepth*0.5 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	start = obstacle.Location

	lifted := obstacle.Location.Add(up.Mul(v.LandingLift))
	var (
		edge      mgl64.Vec3
		edgeFound bool
		last      = obstacle
	)
	for d := v.EdgeStep; d <= v.MaxObstacleLength; d += v.EdgeStep {
		s := lifted.Add(fwd.Mul(d))
		last = c.sensor.LineTrace(s, s.Add(down.Mul(v.ProbeDepth)))
		if !last.Blocking {
			edge, edgeFound = s, true
			break
		}
	}

	if edgeFound {
		groundStart := edge.Add(fwd.Mul(v.GroundForwardOffset))
		ground := c.sensor.LineTrace(groundStart, groundStart.Add(down.Mul(v.GroundDepth)))
		if ground.Blocking {
			land = ground.Location
		}
	} else {
		land = last.Location
	}

	if geom.IsZero(start) || geom.IsZero(land) {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return start, land, true
}

// TryStartVaulting registers the vault warp targets and plays the vault clip.
func (c *Component) TryStartVaulting() bool {
	start, land, ok := c.CanStartVaulting()
	if !ok {
		return false
	}
	if !c.canPlay() {
		return false
	}
	c.warps.Set(WarpVaultStart, start)
	c.warps.Set(WarpVaultLand, land)
	return c.playMontage(TransitionVault, c.clips.vault, WarpVaultStart, WarpVaultLand)
}

// ResolveDashDirection maps the alignment of the input with the local up and right
// axes onto a dash direction. The vertical axis wins when both pass threshold.
func ResolveDashDirection(vertical, horizontal, threshold float64) Direction {
	switch {
	case vertical > threshold:
		return DirectionUp
	case vertical < -threshold:
		return DirectionDown
	case horizontal > threshold:
		return DirectionRight
	case horizontal < -threshold:
		return DirectionLeft
	default:
		return DirectionInvalid
	}
}

// DashDirectionFromInput resolves the last movement input, expressed in the body
// frame, into a dash direction.
func (c *Component) DashDirectionFromInput() Direction {
	in := geom.SafeNormal(c.body.Unrotate(c.move.LastInput()))
	return ResolveDashDirection(in.Dot(geom.Up), in.Dot(geom.Right), c.cfg.Dash.DirectionThreshold)
}

// RequestDash dashes in the direction of the last movement input. Ambiguous input
// is dropped.
func (c *Component) RequestDash() bool {
	dir := c.DashDirectionFromInput()
	if dir == DirectionInvalid {
		c.log.Debug("invalid direction for dash", log.Vec3("input", c.move.LastInput()))
		return false
	}
	return c.TryPerformClimbDash(dir)
}

// CanStartClimbDash probes for a surface to dash onto and returns the point root
// motion should aim at.
func (c *Component) CanStartClimbDash(dir Direction) (mgl64.Vec3, bool) {
	d := c.cfg.Dash
	b := c.body
	var dash, edge bool
	var dashHit, edgeHit mgl64.Vec3

	switch dir {
	case DirectionUp:
		h := c.sensor.TraceFromEyeHeight(d.TraceLength, d.EyeOffset)
		e := c.sensor.TraceFromEyeHeight(d.TraceLength, d.EdgeOffset)
		dash, dashHit = h.Blocking, h.Location
		edge, edgeHit = e.Blocking, e.Location
	case DirectionDown:
		h := c.sensor.TraceFromEyeHeight(d.TraceLength, d.DownEyeOffset)
		if h.Blocking {
			return h.Location, true
		}
		return mgl64.Vec3{}, false
	case DirectionLeft, DirectionRight:
		h := c.sensor.TraceFromEyeHeight(d.TraceLength, d.EyeOffset)
		side := b.Right()
		if dir == DirectionLeft {
			side = side.Mul(-1)
		}
		s := c.sensor.EyePoint(d.EyeOffset).Add(side.Mul(d.EdgeOffset))
		e := c.sensor.LineTrace(s, s.Add(b.Forward().Mul(d.TraceLength)))
		dash, dashHit = h.Blocking, h.Location
		edge, edgeHit = e.Blocking, e.Location
	default:
		return mgl64.Vec3{}, false
	}

	if !dash || !edge {
		return mgl64.Vec3{}, false
	}
	if dir == DirectionUp {
		return dashHit, true
	}
	c.preDashZ, c.hasPreDashZ = b.Position[2], true
	// Root motion aims the feet, the probe ran at eye height.
	edgeHit[2] = b.Position[2] - 2*b.Capsule.HalfHeight
	return edgeHit, true
}

// TryPerformClimbDash plays the dash clip for dir when climbing and a target surface exists.
func (c *Component) TryPerformClimbDash(dir Direction) bool {
	if !c.IsClimbing() || dir == DirectionInvalid {
		return false
	}
	clip := c.clips.dash[dir]
	if !c.canPlay() {
		return false
	}
	point, ok := c.CanStartClimbDash(dir)
	if !ok {
		return false
	}
	c.warps.Set(WarpHop, point)
	if !c.playMontage(dir.transition(), clip, WarpHop) {
		c.warps.Clear(WarpHop)
		return false
	}
	c.dashInProgress = true
	return true
}

// ClimbInputAxes returns the world directions that forward and right movement input
// map to while climbing the current surface.
func (c *Component) ClimbInputAxes() (forward, right mgl64.Vec3) {
	n := c.surface.Normal.Mul(-1)
	forward = n.Cross(c.body.Right())
	right = n.Cross(c.body.Up().Mul(-1))
	return forward, right
}

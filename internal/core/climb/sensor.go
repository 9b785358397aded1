package climb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/debugdraw"
	"github.com/zeusync/climbforge/internal/core/world"
)

// Debug labels of the sensor's queries.
const (
	LabelSurfaceSweep = "surface_sweep"
	LabelSurfaceProbe = "surface_probe"
	LabelFloorSweep   = "floor_sweep"
	LabelEyeTrace     = "eye_trace"
	LabelLineTrace    = "line_trace"
	LabelLedgeRoom    = "ledge_room"
)

// Sensor issues the read-only world queries used by climbing. Every query excludes
// the character's own body.
type Sensor struct {
	cfg   *Config
	body  *character.Body
	world world.Query
	draw  debugdraw.Sink
}

func (s *Sensor) params() world.QueryParams {
	return world.QueryParams{Ignore: []world.BodyID{s.body.ID}}
}

// TraceClimbableSurfaces sweeps the climb capsule a short distance forward from a
// point just ahead of the character.
func (s *Sensor) TraceClimbableSurfaces() SurfaceHitSet {
	fwd := s.body.Forward()
	start := s.body.Position.Add(fwd.Mul(s.cfg.Surface.ForwardOffset))
	end := start.Add(fwd.Mul(s.cfg.Surface.SweepLength))
	return s.sweepMulti(LabelSurfaceSweep, start, end)
}

// TraceDownwardFloor sweeps the climb capsule a short distance down from below the
// character.
func (s *Sensor) TraceDownwardFloor() SurfaceHitSet {
	start := s.body.Position.Add(geom.Down.Mul(s.cfg.Surface.FloorTraceOffset))
	end := start.Add(geom.Down.Mul(s.cfg.Surface.SweepLength))
	return s.sweepMulti(LabelFloorSweep, start, end)
}

// TraceFromEyeHeight casts a ray forward from eye height shifted by offset.
func (s *Sensor) TraceFromEyeHeight(distance, offset float64) world.Hit {
	start := s.EyePoint(offset)
	end := start.Add(s.body.Forward().Mul(distance))
	return s.trace(LabelEyeTrace, start, end)
}

// EyePoint is the character origin raised to eye height plus offset.
func (s *Sensor) EyePoint(offset float64) mgl64.Vec3 {
	return s.body.Position.Add(s.body.Up().Mul(s.body.EyeHeight + offset))
}

// LineTrace casts an arbitrary ray on the climb channel.
func (s *Sensor) LineTrace(start, end mgl64.Vec3) world.Hit {
	return s.trace(LabelLineTrace, start, end)
}

// Aggregate refines each hit with a small sphere sweep towards its impact point and
// averages the results into one grip plane.
func (s *Sensor) Aggregate(hits SurfaceHitSet) AggregateSurface {
	if len(hits) == 0 {
		return AggregateSurface{}
	}
	origin := s.body.Position
	sphere := world.Sphere(s.cfg.Surface.RefineSphereRadius)

	var location, normal mgl64.Vec3
	for _, h := range hits {
		point, n := h.ImpactPoint, h.ImpactNormal
		dir := geom.SafeNormal(h.ImpactPoint.Sub(origin))
		end := origin.Add(dir.Mul(s.cfg.Surface.RefineDistance))
		probe, ok := s.world.SweepSingle(sphere, origin, end, mgl64.QuatIdent(), s.cfg.Channel, s.params())
		s.drawShape(debugdraw.Shape{
			Kind: debugdraw.KindSphere, Label: LabelSurfaceProbe,
			Start: origin, End: end, Radius: sphere.Radius,
			Hit: ok, HitPoint: probe.ImpactPoint,
		})
		if ok {
			point, n = probe.ImpactPoint, probe.ImpactNormal
		}
		location = location.Add(point)
		normal = normal.Add(n)
	}
	return AggregateSurface{
		Location: location.Mul(1 / float64(len(hits))),
		Normal:   geom.SafeNormal(normal),
	}
}

// RoomForCapsule reports whether a standing capsule can travel from start to end.
func (s *Sensor) RoomForCapsule(start, end mgl64.Vec3, radius, halfHeight float64) bool {
	shape := world.Capsule(radius, halfHeight)
	hit, blocked := s.world.SweepSingle(shape, start, end, mgl64.QuatIdent(), s.cfg.Channel, s.params())
	s.drawShape(debugdraw.Shape{
		Kind: debugdraw.KindCapsule, Label: LabelLedgeRoom,
		Start: start, End: end, Radius: radius, HalfHeight: halfHeight,
		Hit: blocked, HitPoint: hit.ImpactPoint,
	})
	return !blocked
}

func (s *Sensor) sweepMulti(label string, start, end mgl64.Vec3) SurfaceHitSet {
	shape := world.Capsule(s.cfg.Surface.CapsuleRadius, s.cfg.Surface.CapsuleHalfHeight)
	hits := s.world.SweepMulti(shape, start, end, mgl64.QuatIdent(), s.cfg.Channel, s.params())
	out := make(SurfaceHitSet, 0, len(hits))
	for _, h := range hits {
		if h.Blocking {
			out = append(out, h)
		}
	}
	shapeDraw := debugdraw.Shape{
		Kind: debugdraw.KindCapsule, Label: label,
		Start: start, End: end, Radius: shape.Radius, HalfHeight: shape.HalfHeight,
		Hit: len(out) > 0,
	}
	if len(out) > 0 {
		shapeDraw.HitPoint = out[0].ImpactPoint
	}
	s.drawShape(shapeDraw)
	return out
}

func (s *Sensor) trace(label string, start, end mgl64.Vec3) world.Hit {
	hit := s.world.LineTrace(start, end, s.cfg.Channel, s.params())
	s.drawShape(debugdraw.Shape{
		Kind: debugdraw.KindLine, Label: label,
		Start: start, End: end,
		Hit: hit.Blocking, HitPoint: hit.ImpactPoint,
	})
	return hit
}

func (s *Sensor) drawShape(shape debugdraw.Shape) {
	if s.cfg.DrawDebug {
		s.draw.Draw(shape)
	}
}

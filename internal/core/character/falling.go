package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
)

type falling struct {
	m *Movement
}

func (f *falling) MaxSpeed() float64        { return f.m.cfg.MaxWalkSpeed }
func (f *falling) MaxAcceleration() float64 { return f.m.cfg.MaxAcceleration }

func (f *falling) Phys(dt float64, _ int) {
	if dt < MinTickTime {
		return
	}
	m, b := f.m, f.m.body

	// Root motion is applied unconstrained while airborne.
	if v, ok := m.RootMotion(dt); ok {
		b.Velocity = v
		delta := v.Mul(dt)
		if hit := m.SafeMove(delta, b.Rotation); hit.Blocking && hit.Time < 1 {
			m.SlideAlongSurface(delta, 1-hit.Time, hit.Normal)
		}
		return
	}

	horizontal := mgl64.Vec3{b.Velocity[0], b.Velocity[1], 0}
	accel := mgl64.Vec3{b.Acceleration[0], b.Acceleration[1], 0}.Mul(m.cfg.AirControl)
	horizontal = clampLen(horizontal.Add(accel.Mul(dt)), math.Max(f.MaxSpeed(), geom.Size2D(b.Velocity)))
	b.Velocity = mgl64.Vec3{horizontal[0], horizontal[1], b.Velocity[2] + m.cfg.GravityZ*dt}

	delta := b.Velocity.Mul(dt)
	hit := m.SafeMove(delta, b.Rotation)
	if !hit.Blocking || hit.Time >= 1 {
		return
	}
	if hit.Normal[2] >= m.cfg.WalkableFloorZ && b.Velocity[2] <= 0 {
		m.SetMode(ModeWalking)
		return
	}
	m.SlideAlongSurface(delta, 1-hit.Time, hit.Normal)
	n := geom.SafeNormal(hit.Normal)
	if into := b.Velocity.Dot(n); into < 0 {
		b.Velocity = b.Velocity.Sub(n.Mul(into))
	}
}

package character

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
)

const floorClearance = 0.15

type walking struct {
	m *Movement
}

func (w *walking) MaxSpeed() float64        { return w.m.cfg.MaxWalkSpeed }
func (w *walking) MaxAcceleration() float64 { return w.m.cfg.MaxAcceleration }

func (w *walking) Phys(dt float64, _ int) {
	if dt < MinTickTime {
		return
	}
	m, b := w.m, w.m.body

	if v, ok := m.RootMotion(dt); ok {
		b.Velocity = v
		delta := v.Mul(dt)
		if hit := m.SafeMove(delta, b.Rotation); hit.Blocking && hit.Time < 1 {
			m.SlideAlongSurface(delta, 1-hit.Time, hit.Normal)
		}
		return
	}

	b.Acceleration[2] = 0
	b.Velocity[2] = 0
	m.CalcVelocity(dt, m.cfg.GroundFriction, false, m.cfg.BrakingDecelerationWalking)

	rot := b.Rotation
	if b.OrientToMovement && geom.Size2D(b.Acceleration) > geom.KindaSmallNumber {
		rot = geom.QInterpTo(rot, geom.LookRotation(geom.SafeNormal2D(b.Acceleration)), dt, m.cfg.RotationInterpSpeed)
	}

	delta := b.Velocity.Mul(dt)
	if hit := m.SafeMove(delta, rot); hit.Blocking && hit.Time < 1 {
		n := hit.Normal
		if n[2] < m.cfg.WalkableFloorZ {
			n = geom.SafeNormal2D(n)
		}
		m.SlideAlongSurface(delta, 1-hit.Time, n)
	}

	w.snapToFloor()
}

// snapToFloor keeps the capsule resting on walkable ground within step height and
// starts falling when there is none. The capsule is swept so a body perched over
// an edge keeps its footing until the contact tilts past walkable.
func (w *walking) snapToFloor() {
	m, b := w.m, w.m.body
	start := b.Position
	end := start.Sub(geom.Up.Mul(m.cfg.MaxStepHeight + floorClearance))
	for _, hit := range m.world.SweepMulti(b.Capsule.Shape(), start, end, b.Rotation, m.channel, m.queryParams()) {
		if !hit.Blocking || hit.Normal[2] < m.cfg.WalkableFloorZ {
			continue
		}
		b.Position = mgl64.Vec3{b.Position[0], b.Position[1], hit.Location[2] + floorClearance}
		return
	}
	m.SetMode(ModeFalling)
}

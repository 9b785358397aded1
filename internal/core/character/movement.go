// Package character hosts the base movement of a capsule character: the mode switch,
// velocity integration, sweeping moves and the walking and falling strategies that
// custom modes hand control back to.
package character

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/core/world"
)

var (
	ErrNilBody  = errors.New("character: nil body")
	ErrNilWorld = errors.New("character: nil world query")
)

// MinTickTime is the smallest step a strategy integrates.
const MinTickTime = 1e-6

const pullBackDistance = 0.125

type Mode uint8

const (
	ModeWalking Mode = iota + 1
	ModeFalling
	ModeClimbing
)

func (m Mode) String() string {
	switch m {
	case ModeWalking:
		return "walking"
	case ModeFalling:
		return "falling"
	case ModeClimbing:
		return "climbing"
	default:
		return "none"
	}
}

// Locomotion is the per-mode strategy selected once per sub-step.
type Locomotion interface {
	MaxSpeed() float64
	MaxAcceleration() float64
	Phys(dt float64, iterations int)
}

// RootMotionSource supplies animation-driven velocity. root is the feet location.
type RootMotionSource interface {
	RootMotion(root mgl64.Vec3, rot mgl64.Quat, dt float64) (mgl64.Vec3, bool)
}

type ModeChangeHook func(prev, next Mode)

type Movement struct {
	body    *Body
	world   world.Query
	cfg     Config
	log     log.Log
	channel world.Channel

	mode  Mode
	modes map[Mode]Locomotion
	hooks []ModeChangeHook

	rootMotion RootMotionSource
	input      mgl64.Vec3
	lastInput  mgl64.Vec3
}

func NewMovement(body *Body, q world.Query, cfg Config, logger log.Log) (*Movement, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if q == nil {
		return nil, ErrNilWorld
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	m := &Movement{
		body:    body,
		world:   q,
		cfg:     cfg,
		log:     logger,
		channel: world.ChannelWorldStatic,
		mode:    ModeWalking,
		modes:   make(map[Mode]Locomotion, 3),
	}
	m.modes[ModeWalking] = &walking{m: m}
	m.modes[ModeFalling] = &falling{m: m}
	return m, nil
}

func (m *Movement) Body() *Body           { return m.body }
func (m *Movement) World() world.Query    { return m.world }
func (m *Movement) Config() Config        { return m.cfg }
func (m *Movement) Mode() Mode            { return m.mode }
func (m *Movement) IsFalling() bool       { return m.mode == ModeFalling }
func (m *Movement) LastInput() mgl64.Vec3 { return m.lastInput }

// SetConfig swaps tuning between ticks. Capsule and eye height are not touched.
func (m *Movement) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	return nil
}

// Register installs the strategy for a mode, replacing the built-in one if present.
func (m *Movement) Register(mode Mode, l Locomotion) {
	m.modes[mode] = l
}

func (m *Movement) OnModeChanged(h ModeChangeHook) {
	m.hooks = append(m.hooks, h)
}

func (m *Movement) SetRootMotionSource(src RootMotionSource) {
	m.rootMotion = src
}

// SetMode switches strategy and runs the change hooks. Setting the current mode is a no-op.
func (m *Movement) SetMode(next Mode) {
	if next == m.mode {
		return
	}
	if _, ok := m.modes[next]; !ok {
		m.log.Warn("movement mode has no strategy", log.String("mode", next.String()))
		return
	}
	prev := m.mode
	m.mode = next
	if prev == ModeFalling && next == ModeWalking {
		m.body.Velocity[2] = 0
	}
	m.log.Debug("movement mode changed",
		log.String("from", prev.String()),
		log.String("to", next.String()),
	)
	for _, h := range m.hooks {
		h(prev, next)
	}
}

// AddInput accumulates movement input for the next Step.
func (m *Movement) AddInput(v mgl64.Vec3) {
	m.input = m.input.Add(v)
}

func (m *Movement) MaxSpeed() float64 {
	if l, ok := m.modes[m.mode]; ok {
		return l.MaxSpeed()
	}
	return m.cfg.MaxWalkSpeed
}

func (m *Movement) MaxAcceleration() float64 {
	if l, ok := m.modes[m.mode]; ok {
		return l.MaxAcceleration()
	}
	return m.cfg.MaxAcceleration
}

// RootMotion asks the animation side for a velocity override.
func (m *Movement) RootMotion(dt float64) (mgl64.Vec3, bool) {
	if m.rootMotion == nil {
		return mgl64.Vec3{}, false
	}
	return m.rootMotion.RootMotion(m.body.Feet(), m.body.Rotation, dt)
}

// Step consumes input and integrates one tick, sub-stepping long frames.
func (m *Movement) Step(dt float64) {
	in := m.input
	m.input = mgl64.Vec3{}
	if l := in.Len(); l > 1 {
		in = in.Mul(1 / l)
	}
	m.lastInput = in
	m.body.Acceleration = in.Mul(m.MaxAcceleration())

	remaining := dt
	for i := 0; remaining >= MinTickTime && i < m.cfg.MaxSimulationIterations; i++ {
		step := math.Min(remaining, m.cfg.MaxSimulationTimeStep)
		remaining -= step
		l, ok := m.modes[m.mode]
		if !ok {
			return
		}
		l.Phys(step, i+1)
	}
}

// StopMovementImmediately zeroes velocity.
func (m *Movement) StopMovementImmediately() {
	m.body.Velocity = mgl64.Vec3{}
}

func (m *Movement) queryParams() world.QueryParams {
	return world.QueryParams{Ignore: []world.BodyID{m.body.ID}, SkipSeparating: true}
}

// SafeMove sweeps the body capsule by delta and stops short of the first blocking
// contact. The returned hit's Time is the fraction of delta applied.
func (m *Movement) SafeMove(delta mgl64.Vec3, rot mgl64.Quat) world.Hit {
	b := m.body
	b.Rotation = rot
	start := b.Position
	end := start.Add(delta)
	if delta.LenSqr() < geom.SmallNumber {
		return world.Miss(start, end)
	}
	hit, ok := m.world.SweepSingle(b.Capsule.Shape(), start, end, rot, m.channel, m.queryParams())
	if !ok {
		b.Position = end
		return world.Miss(start, end)
	}
	length := delta.Len()
	frac := math.Max(length*hit.Time-pullBackDistance, 0) / length
	b.Position = start.Add(delta.Mul(frac))
	hit.Time = frac
	return hit
}

// SlideAlongSurface moves the remaining fraction of delta along the blocking plane,
// then once more along a second wall if the slide is blocked too. It returns the
// fraction of the slide that was applied.
func (m *Movement) SlideAlongSurface(delta mgl64.Vec3, remaining float64, normal mgl64.Vec3) float64 {
	normal = geom.SafeNormal(normal)
	slide := delta.Sub(normal.Mul(delta.Dot(normal))).Mul(remaining)
	if slide.Dot(delta) <= 0 {
		return 0
	}
	hit := m.SafeMove(slide, m.body.Rotation)
	if !hit.Blocking || hit.Time >= 1 {
		return 1
	}
	applied := hit.Time
	n2 := geom.SafeNormal(hit.Normal)
	crease := normal.Cross(n2)
	var second mgl64.Vec3
	if crease.LenSqr() > geom.KindaSmallNumber {
		second = geom.ProjectOnTo(slide, crease).Mul(1 - hit.Time)
	} else {
		second = slide.Sub(n2.Mul(slide.Dot(n2))).Mul(1 - hit.Time)
	}
	if second.Dot(delta) > 0 {
		m.SafeMove(second, m.body.Rotation)
	}
	return applied
}

// CalcVelocity updates velocity from acceleration with friction and braking.
// fluid applies friction to the whole velocity as in a viscous medium.
func (m *Movement) CalcVelocity(dt, friction float64, fluid bool, brakingDecel float64) {
	if dt < MinTickTime {
		return
	}
	b := m.body
	maxSpeed := m.MaxSpeed()
	zeroAccel := geom.IsZero(b.Acceleration)
	overMax := b.Velocity.LenSqr() > maxSpeed*maxSpeed*1.01

	if zeroAccel || overMax {
		old := b.Velocity
		m.applyBraking(dt, friction, brakingDecel)
		if overMax && b.Velocity.LenSqr() < maxSpeed*maxSpeed && b.Acceleration.Dot(old) > 0 {
			b.Velocity = geom.SafeNormal(old).Mul(maxSpeed)
		}
	} else {
		dir := geom.SafeNormal(b.Acceleration)
		speed := b.Velocity.Len()
		b.Velocity = b.Velocity.Sub(b.Velocity.Sub(dir.Mul(speed)).Mul(math.Min(dt*friction, 1)))
	}

	if fluid {
		b.Velocity = b.Velocity.Mul(1 - math.Min(friction*dt, 1))
	}

	if !zeroAccel {
		limit := maxSpeed
		if s := b.Velocity.Len(); s > maxSpeed {
			limit = s
		}
		b.Velocity = clampLen(b.Velocity.Add(b.Acceleration.Mul(dt)), limit)
	}
}

const (
	brakingFrictionFactor = 2
	brakingSubStep        = 1.0 / 33
	brakeToStopVelocity   = 10
)

func (m *Movement) applyBraking(dt, friction, decel float64) {
	b := m.body
	if geom.IsZero(b.Velocity) || dt < MinTickTime {
		return
	}
	friction *= brakingFrictionFactor
	zeroFriction := friction == 0
	zeroBraking := decel == 0
	if zeroFriction && zeroBraking {
		return
	}
	old := b.Velocity
	var rev mgl64.Vec3
	if !zeroBraking {
		rev = geom.SafeNormal(b.Velocity).Mul(-decel)
	}
	remaining := dt
	for remaining >= MinTickTime {
		step := remaining
		if remaining > brakingSubStep && !zeroFriction {
			step = math.Min(brakingSubStep, remaining*0.5)
		}
		remaining -= step
		b.Velocity = b.Velocity.Add(b.Velocity.Mul(-friction).Add(rev).Mul(step))
		if b.Velocity.Dot(old) <= 0 {
			b.Velocity = mgl64.Vec3{}
			return
		}
	}
	sq := b.Velocity.LenSqr()
	if sq <= geom.KindaSmallNumber || (!zeroBraking && sq <= brakeToStopVelocity*brakeToStopVelocity) {
		b.Velocity = mgl64.Vec3{}
	}
}

func clampLen(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	if l := v.Len(); l > limit && l > 0 {
		return v.Mul(limit / l)
	}
	return v
}

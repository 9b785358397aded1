// Package climb implements free-form climbing on top of the character movement
// host: surface sensing, climb eligibility, the climbing physics mode, vault and
// dash planning, and the animation-gated transitions between them.
package climb

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/debugdraw"
	"github.com/zeusync/climbforge/internal/core/observability/log"
)

var ErrNilMovement = errors.New("climb: nil movement")

type Deps struct {
	Movement *character.Movement
	// Animator may be nil, in which case no animation-gated transition can start.
	Animator Animator
	Warps    WarpTargets
	Events   bus.EventBus
	Log      log.Log
	Draw     debugdraw.Sink
}

type clipSet struct {
	idleToClimb animation.ClipID
	climbDown   animation.ClipID
	climbToTop  animation.ClipID
	vault       animation.ClipID
	dash        map[Direction]animation.ClipID
	kinds       map[animation.ClipID]TransitionKind
}

type Component struct {
	cfg    Config
	move   *character.Movement
	body   *character.Body
	anim   Animator
	warps  WarpTargets
	events bus.EventBus
	log    log.Log
	sensor *Sensor
	clips  clipSet
	sub    bus.Subscription

	hits    SurfaceHitSet
	surface AggregateSurface
	pending *PendingTransition

	standingHalfHeight float64
	preClimbHalfHeight float64

	ledgeTarget         mgl64.Vec3
	ledgeSlopeDeg       float64
	usedLedgeWarp       bool
	movingToLedgeTarget bool

	dashInProgress bool
	preDashZ       float64
	hasPreDashZ    bool

	onEnter []func()
	onExit  []func()
}

func New(cfg Config, deps Deps) (*Component, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Movement == nil {
		return nil, ErrNilMovement
	}
	if deps.Log == nil {
		deps.Log = log.NewNop()
	}
	if deps.Draw == nil {
		deps.Draw = debugdraw.Nop{}
	}
	if deps.Warps == nil {
		deps.Warps = nopWarps{}
	}

	body := deps.Movement.Body()
	c := &Component{
		cfg:                cfg,
		move:               deps.Movement,
		body:               body,
		anim:               deps.Animator,
		warps:              deps.Warps,
		events:             deps.Events,
		log:                deps.Log,
		standingHalfHeight: body.Capsule.HalfHeight,
		preClimbHalfHeight: body.Capsule.HalfHeight,
	}
	c.sensor = &Sensor{cfg: &c.cfg, body: body, world: deps.Movement.World(), draw: deps.Draw}
	c.setClips()

	c.move.Register(character.ModeClimbing, &climbing{c: c})
	c.move.OnModeChanged(c.onModeChanged)
	if rm, ok := deps.Animator.(character.RootMotionSource); ok {
		c.move.SetRootMotionSource(rm)
	}
	if c.events != nil {
		sub, err := c.events.Subscribe(animation.EventClipEnded, c.handleClipEnded)
		if err != nil {
			return nil, err
		}
		c.sub = sub
	}
	return c, nil
}

// Close detaches the component from the event bus.
func (c *Component) Close() error {
	if c.events == nil || c.sub == nil {
		return nil
	}
	return c.events.Unsubscribe(c.sub)
}

// SetConfig swaps tuning between ticks.
func (c *Component) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.setClips()
	return nil
}

func (c *Component) setClips() {
	n := c.cfg.Clips
	c.clips = clipSet{
		idleToClimb: animation.Clip(n.IdleToClimb),
		climbDown:   animation.Clip(n.ClimbDown),
		climbToTop:  animation.Clip(n.ClimbToTop),
		vault:       animation.Clip(n.Vault),
		dash: map[Direction]animation.ClipID{
			DirectionUp:    animation.Clip(n.DashUp),
			DirectionDown:  animation.Clip(n.DashDown),
			DirectionLeft:  animation.Clip(n.DashLeft),
			DirectionRight: animation.Clip(n.DashRight),
		},
	}
	c.clips.kinds = map[animation.ClipID]TransitionKind{
		c.clips.idleToClimb:          TransitionEnterClimb,
		c.clips.climbDown:            TransitionClimbDownEntry,
		c.clips.climbToTop:           TransitionClimbToTop,
		c.clips.vault:                TransitionVault,
		c.clips.dash[DirectionUp]:    TransitionDashUp,
		c.clips.dash[DirectionDown]:  TransitionDashDown,
		c.clips.dash[DirectionLeft]:  TransitionDashLeft,
		c.clips.dash[DirectionRight]: TransitionDashRight,
	}
}

// Tick runs one simulation step: movement for the current mode, a fresh surface
// sweep for the input handlers, then the post-ledge walk correction.
func (c *Component) Tick(dt float64) {
	c.move.Step(dt)
	c.hits = c.sensor.TraceClimbableSurfaces()
	c.updateLedgeWalk()
}

func (c *Component) Config() Config                { return c.cfg }
func (c *Component) Sensor() *Sensor               { return c.sensor }
func (c *Component) Movement() *character.Movement { return c.move }
func (c *Component) Mode() character.Mode          { return c.move.Mode() }
func (c *Component) IsClimbing() bool              { return c.move.Mode() == character.ModeClimbing }
func (c *Component) IsFalling() bool               { return c.move.IsFalling() }
func (c *Component) Hits() SurfaceHitSet           { return c.hits }
func (c *Component) Surface() AggregateSurface     { return c.surface }
func (c *Component) LedgeTarget() mgl64.Vec3       { return c.ledgeTarget }
func (c *Component) IsMovingToLedgeTarget() bool   { return c.movingToLedgeTarget }
func (c *Component) IsDashInProgress() bool        { return c.dashInProgress }

// Pending returns the transition waiting for its clip, if any.
func (c *Component) Pending() (PendingTransition, bool) {
	if c.pending == nil {
		return PendingTransition{}, false
	}
	return *c.pending, true
}

func (c *Component) OnEnterClimbing(fn func()) { c.onEnter = append(c.onEnter, fn) }
func (c *Component) OnExitClimbing(fn func())  { c.onExit = append(c.onExit, fn) }

func (c *Component) onModeChanged(prev, next character.Mode) {
	if next == character.ModeClimbing {
		c.preClimbHalfHeight = c.body.Capsule.HalfHeight
		c.body.Capsule.HalfHeight = c.preClimbHalfHeight * c.cfg.Physics.CapsuleHeightScale
		c.body.OrientToMovement = false
		c.log.Debug("climbing started", log.Vec3("position", c.body.Position))
		for _, fn := range c.onEnter {
			fn()
		}
	}
	if prev == character.ModeClimbing {
		c.body.OrientToMovement = true
		c.body.Capsule.HalfHeight = c.preClimbHalfHeight
		c.body.Rotation = geom.YawOnly(c.body.Rotation)
		c.move.StopMovementImmediately()
		if c.pending == nil || c.pending.Kind != TransitionClimbToTop {
			c.clearLedgeWarp()
		}
		c.log.Debug("climbing stopped",
			log.String("next", next.String()),
			log.Vec3("position", c.body.Position),
		)
		c.publish(TransitionExitClimb, PhaseResolved, false)
		for _, fn := range c.onExit {
			fn()
		}
	}
}

func (c *Component) publish(kind TransitionKind, phase TransitionPhase, interrupted bool) {
	if c.events == nil {
		return
	}
	err := c.events.Publish(bus.NewEvent(EventTransition, "climb", TransitionEvent{
		Kind:        kind,
		Phase:       phase,
		Interrupted: interrupted,
		Position:    c.body.Position,
	}))
	if err != nil {
		c.log.Warn("transition listener failed", log.String("kind", kind.String()), log.Error(err))
	}
}

type nopWarps struct{}

func (nopWarps) Set(string, mgl64.Vec3) {}
func (nopWarps) Clear(string)           {}

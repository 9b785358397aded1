// Package sim drives climbing actors over a shared world at a fixed tick rate.
package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/config"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/climb"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/debugdraw"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/core/warp"
	"github.com/zeusync/climbforge/internal/core/world"
)

var (
	ErrNilWorld    = errors.New("sim: nil world")
	ErrUnnamed     = errors.New("sim: actor without a name")
	ErrInvalidStep = errors.New("sim: step must be positive")
)

type Action uint8

const (
	ActionNone Action = iota
	// ActionClimb asks the climb component to climb, climb down or vault.
	ActionClimb
	// ActionRelease lets go of the wall.
	ActionRelease
	// ActionDash dashes towards the held input.
	ActionDash
)

func (a Action) String() string {
	switch a {
	case ActionClimb:
		return "climb"
	case ActionRelease:
		return "release"
	case ActionDash:
		return "dash"
	default:
		return "none"
	}
}

// Command is one scripted control. Input is held on every tick in From..To inclusive,
// Action fires once on From.
type Command struct {
	From, To uint64
	// Input is local intent: X forward, Y right. While climbing forward means up the wall.
	Input    mgl64.Vec3
	Action   Action
}

type ActorOptions struct {
	Name     string
	ID       world.BodyID
	Position mgl64.Vec3
	// Yaw in degrees around the up axis.
	Yaw      float64
	Script   []Command
	// Stream receives the actor's debug shapes once per tick when set.
	Stream   *debugdraw.Stream
}

// Actor owns one character: its body, movement, climbing, montages, warp targets and
// event bus. An actor is ticked by one goroutine at a time.
type Actor struct {
	Name     string
	Body     *character.Body
	Movement *character.Movement
	Climb    *climb.Component
	Montages *animation.Montages
	Warps    *warp.Targets
	Events   bus.EventBus

	script []Command
	draw   *debugdraw.Buffer
	log    log.Log
	tick   uint64
	sub    bus.Subscription
}

// State is a read-only snapshot of an actor.
type State struct {
	Name     string
	Tick     uint64
	Mode     character.Mode
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Anim     climb.AnimState
	Pending  string
}

func NewActor(cfg config.Config, q world.Query, opts ActorOptions, logger log.Log) (*Actor, error) {
	if q == nil {
		return nil, ErrNilWorld
	}
	if opts.Name == "" {
		return nil, ErrUnnamed
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("actor", opts.Name))

	lib, err := cfg.Library()
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", opts.Name, err)
	}

	body := character.NewBody(opts.ID, opts.Position, cfg.Character)
	if opts.Yaw != 0 {
		body.Rotation = mgl64.QuatRotate(mgl64.DegToRad(opts.Yaw), geom.Up)
	}
	mv, err := character.NewMovement(body, q, cfg.Character, logger)
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", opts.Name, err)
	}

	a := &Actor{
		Name:     opts.Name,
		Body:     body,
		Movement: mv,
		Warps:    warp.NewTargets(),
		Events:   bus.New(),
		script:   opts.Script,
		log:      logger,
	}
	a.Montages = animation.NewMontages(lib, a.Events, a.Warps, opts.Name)

	deps := climb.Deps{
		Movement: mv,
		Animator: a.Montages,
		Warps:    a.Warps,
		Events:   a.Events,
		Log:      logger,
	}
	if opts.Stream != nil {
		a.draw = debugdraw.NewBuffer(opts.Name, opts.Stream)
		deps.Draw = a.draw
	}
	if a.Climb, err = climb.New(cfg.Climb, deps); err != nil {
		return nil, fmt.Errorf("actor %s: %w", opts.Name, err)
	}

	a.sub, err = a.Events.Subscribe(climb.EventTransition, a.onTransition)
	if err != nil {
		_ = a.Climb.Close()
		return nil, fmt.Errorf("actor %s: %w", opts.Name, err)
	}
	return a, nil
}

// Tick advances the actor by dt seconds. Clip completions from the previous step are
// delivered before scripted input so the climb component sees a settled mode.
func (a *Actor) Tick(dt float64) error {
	if dt <= 0 {
		return ErrInvalidStep
	}
	a.tick++
	a.Montages.Advance(dt)
	if err := a.Events.Flush(); err != nil {
		return fmt.Errorf("actor %s: %w", a.Name, err)
	}
	a.control()
	a.Climb.Tick(dt)
	if a.draw != nil {
		a.draw.Flush()
	}
	return nil
}

func (a *Actor) control() {
	for _, cmd := range a.script {
		if a.tick < cmd.From || a.tick > cmd.To {
			continue
		}
		if !geom.IsZero(cmd.Input) {
			a.Movement.AddInput(a.WorldInput(cmd.Input))
		}
		if a.tick == cmd.From && cmd.Action != ActionNone {
			a.act(cmd.Action)
		}
	}
}

func (a *Actor) act(action Action) {
	var ok bool
	switch action {
	case ActionClimb:
		ok = a.Climb.ToggleClimbing(true)
	case ActionRelease:
		ok = a.Climb.ToggleClimbing(false)
	case ActionDash:
		ok = a.Climb.RequestDash()
	}
	a.log.Debug("scripted action",
		log.String("action", action.String()),
		log.Bool("accepted", ok),
		log.Uint64("tick", a.tick),
	)
}

// WorldInput maps local intent onto world space: the climbing plane while climbing,
// the horizontal facing otherwise.
func (a *Actor) WorldInput(local mgl64.Vec3) mgl64.Vec3 {
	var forward, right mgl64.Vec3
	if a.Climb.IsClimbing() {
		forward, right = a.Climb.ClimbInputAxes()
	} else {
		yaw := geom.YawOnly(a.Body.Rotation)
		forward, right = yaw.Rotate(geom.Forward), yaw.Rotate(geom.Right)
	}
	return forward.Mul(local[0]).Add(right.Mul(local[1]))
}

func (a *Actor) onTransition(ev bus.Event) error {
	te, ok := ev.Data().(climb.TransitionEvent)
	if !ok {
		return nil
	}
	a.log.Info("transition",
		log.String("kind", te.Kind.String()),
		log.String("phase", te.Phase.String()),
		log.Bool("interrupted", te.Interrupted),
		log.Vec3("position", te.Position),
	)
	return nil
}

// SetConfig applies new movement and climbing tuning. The clip library is fixed for
// the actor's lifetime.
func (a *Actor) SetConfig(cfg config.Config) error {
	return errors.Join(
		a.Movement.SetConfig(cfg.Character),
		a.Climb.SetConfig(cfg.Climb),
	)
}

func (a *Actor) State() State {
	s := State{
		Name:     a.Name,
		Tick:     a.tick,
		Mode:     a.Movement.Mode(),
		Position: a.Body.Position,
		Velocity: a.Body.Velocity,
		Anim:     a.Climb.AnimState(),
	}
	if p, ok := a.Climb.Pending(); ok {
		s.Pending = p.Kind.String()
	}
	return s
}

func (a *Actor) Close() error {
	return errors.Join(a.Events.Unsubscribe(a.sub), a.Climb.Close())
}

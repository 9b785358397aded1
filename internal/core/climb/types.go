package climb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/world"
)

// SurfaceHitSet is the ordered result of one climbable-surface sweep.
type SurfaceHitSet []world.Hit

// AggregateSurface is the averaged grip plane. Normal is zero when there are no hits.
type AggregateSurface struct {
	Location mgl64.Vec3
	Normal   mgl64.Vec3
}

type TransitionKind uint8

const (
	TransitionEnterClimb TransitionKind = iota + 1
	TransitionExitClimb
	TransitionClimbDownEntry
	TransitionClimbToTop
	TransitionVault
	TransitionDashUp
	TransitionDashDown
	TransitionDashLeft
	TransitionDashRight
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionEnterClimb:
		return "enter_climb"
	case TransitionExitClimb:
		return "exit_climb"
	case TransitionClimbDownEntry:
		return "climb_down_entry"
	case TransitionClimbToTop:
		return "climb_to_top"
	case TransitionVault:
		return "vault"
	case TransitionDashUp:
		return "dash_up"
	case TransitionDashDown:
		return "dash_down"
	case TransitionDashLeft:
		return "dash_left"
	case TransitionDashRight:
		return "dash_right"
	default:
		return "unknown"
	}
}

// PendingTransition is a state change waiting for its clip to end.
type PendingTransition struct {
	ID    uuid.UUID
	Kind  TransitionKind
	Clip  animation.ClipID
	Warps []string
}

type Direction uint8

const (
	DirectionInvalid Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "invalid"
	}
}

func (d Direction) transition() TransitionKind {
	switch d {
	case DirectionUp:
		return TransitionDashUp
	case DirectionDown:
		return TransitionDashDown
	case DirectionLeft:
		return TransitionDashLeft
	case DirectionRight:
		return TransitionDashRight
	default:
		return 0
	}
}

// Warp target names shared with the animation side.
const (
	WarpLedge      = "LedgeWarpOffset"
	WarpVaultStart = "VaultStart"
	WarpVaultLand  = "VaultLand"
	WarpHop        = "HopHitPoint"
)

// EventTransition is published synchronously with a TransitionEvent payload.
const EventTransition = "climb.transition"

type TransitionPhase uint8

const (
	PhaseStarted TransitionPhase = iota + 1
	PhaseResolved
)

func (p TransitionPhase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

type TransitionEvent struct {
	Kind        TransitionKind
	Phase       TransitionPhase
	Interrupted bool
	Position    mgl64.Vec3
}

// Animator is the playback side the coordinator drives.
type Animator interface {
	Play(id animation.ClipID) bool
	IsAnyPlaying() bool
	IsPlaying(id animation.ClipID) bool
}

// WarpTargets is the write side of the motion alignment registry.
type WarpTargets interface {
	Set(name string, point mgl64.Vec3)
	Clear(name string)
}

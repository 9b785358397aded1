package climb

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/log"
)

var ErrUnexpectedPayload = errors.New("climb: unexpected event payload")

// ToggleClimbing enables climbing through the first eligible entry (wall, ledge
// below, then vault) or leaves climbing immediately. It reports whether a
// transition started.
func (c *Component) ToggleClimbing(enable bool) bool {
	if !enable {
		if !c.IsClimbing() {
			return false
		}
		c.StopClimbing()
		return true
	}
	if c.IsClimbing() {
		return false
	}
	switch {
	case c.CanStartClimbing():
		return c.playMontage(TransitionEnterClimb, c.clips.idleToClimb)
	case c.CanStartClimbingDown():
		return c.playMontage(TransitionClimbDownEntry, c.clips.climbDown)
	default:
		return c.TryStartVaulting()
	}
}

func (c *Component) StartClimbing() {
	c.move.SetMode(character.ModeClimbing)
}

func (c *Component) StopClimbing() {
	c.move.SetMode(character.ModeFalling)
}

func (c *Component) canPlay() bool {
	return c.anim != nil && !c.anim.IsAnyPlaying()
}

// playMontage starts clip unless another clip is already playing and records the
// transition that its end will resolve.
func (c *Component) playMontage(kind TransitionKind, clip animation.ClipID, warps ...string) bool {
	if !c.canPlay() {
		return false
	}
	if !c.anim.Play(clip) {
		c.log.Warn("transition clip not found", log.String("kind", kind.String()))
		return false
	}
	c.pending = &PendingTransition{
		ID:    uuid.New(),
		Kind:  kind,
		Clip:  clip,
		Warps: warps,
	}
	c.log.Debug("transition started",
		log.String("kind", kind.String()),
		log.String("id", c.pending.ID.String()),
	)
	c.publish(kind, PhaseStarted, false)
	return true
}

func (c *Component) handleClipEnded(ev bus.Event) error {
	ended, ok := ev.Data().(animation.Ended)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedPayload, ev.Data())
	}
	c.OnAnimationSegmentEnded(ended.Clip, ended.Interrupted)
	return nil
}

// OnAnimationSegmentEnded applies the state change gated on clip. Clips that no
// transition uses are ignored.
func (c *Component) OnAnimationSegmentEnded(clip animation.ClipID, interrupted bool) {
	kind, ok := c.clips.kinds[clip]
	if !ok {
		return
	}
	if c.pending != nil && c.pending.Clip == clip {
		c.pending = nil
	}

	switch kind {
	case TransitionEnterClimb, TransitionClimbDownEntry:
		c.StartClimbing()
		c.move.StopMovementImmediately()
	case TransitionClimbToTop:
		c.finishClimbToTop()
	case TransitionVault:
		c.warps.Clear(WarpVaultStart)
		c.warps.Clear(WarpVaultLand)
		c.move.SetMode(character.ModeWalking)
	case TransitionDashUp, TransitionDashDown, TransitionDashLeft, TransitionDashRight:
		c.finishDash(kind)
	}

	c.log.Debug("transition resolved",
		log.String("kind", kind.String()),
		log.Bool("interrupted", interrupted),
	)
	c.publish(kind, PhaseResolved, interrupted)
}

func (c *Component) finishClimbToTop() {
	c.clearLedgeWarp()
	b := c.body
	toTarget := geom.SafeNormal(c.ledgeTarget.Sub(b.Position))
	inFront := b.Forward().Dot(toTarget) > 0

	c.move.SetMode(character.ModeWalking)
	if inFront {
		b.Position[2] = c.ledgeTarget[2] + b.Capsule.HalfHeight
		c.movingToLedgeTarget = true
	}
}

func (c *Component) finishDash(kind TransitionKind) {
	c.warps.Clear(WarpHop)
	c.dashInProgress = false
	if kind == TransitionDashLeft || kind == TransitionDashRight {
		if c.hasPreDashZ && c.body.Position[2] != c.preDashZ {
			c.body.Position[2] = c.preDashZ
		}
	}
	c.hasPreDashZ = false
}

// updateLedgeWalk walks the character onto the recorded ledge target after a
// climb-to-top clip. Acceleration mirrors velocity so animation reads it as moving.
func (c *Component) updateLedgeWalk() {
	if !c.movingToLedgeTarget {
		return
	}
	b := c.body
	toTarget := c.ledgeTarget.Sub(b.Position)
	b.Velocity = geom.SafeNormal2D(toTarget).Mul(c.cfg.LedgeWalk.Speed)
	b.Acceleration = b.Velocity
	b.Acceleration[2] = 0

	if geom.Size2D(toTarget) < c.cfg.LedgeWalk.AcceptRadius {
		c.movingToLedgeTarget = false
		b.Acceleration = mgl64.Vec3{}
		c.ledgeTarget = mgl64.Vec3{}
		c.ledgeSlopeDeg = 0
		c.move.StopMovementImmediately()
	}
}

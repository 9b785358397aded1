package climb

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/core/warp"
	"github.com/zeusync/climbforge/internal/core/world"
	"github.com/zeusync/climbforge/internal/core/world/scene"
)

const slopedLedgeZ = 200.0

// slopedLedgeQuery has no walls. Every downward ray lands on a tilted ledge top.
type slopedLedgeQuery struct {
	normal mgl64.Vec3
}

func (q *slopedLedgeQuery) SweepMulti(_ world.Shape, _, _ mgl64.Vec3, _ mgl64.Quat, _ world.Channel, _ world.QueryParams) []world.Hit {
	return nil
}

func (q *slopedLedgeQuery) SweepSingle(_ world.Shape, start, end mgl64.Vec3, _ mgl64.Quat, _ world.Channel, _ world.QueryParams) (world.Hit, bool) {
	return world.Miss(start, end), false
}

func (q *slopedLedgeQuery) LineTrace(start, end mgl64.Vec3, _ world.Channel, _ world.QueryParams) world.Hit {
	if end.Z() >= start.Z() || start.Z() < slopedLedgeZ || end.Z() > slopedLedgeZ {
		return world.Miss(start, end)
	}
	at := mgl64.Vec3{end.X(), end.Y(), slopedLedgeZ}
	return world.Hit{
		Blocking:     true,
		Time:         (start.Z() - slopedLedgeZ) / (start.Z() - end.Z()),
		Location:     at,
		ImpactPoint:  at,
		Normal:       q.normal,
		ImpactNormal: q.normal,
		TraceStart:   start,
		TraceEnd:     end,
	}
}

func newSlopedLedge(t *testing.T) (fixture, *fakeAnimator) {
	t.Helper()
	anim := &fakeAnimator{}
	q := &slopedLedgeQuery{normal: geom.SafeNormal(mgl64.Vec3{0.2, 0, 1})}
	f := newFixture(t, q, mgl64.Vec3{0, 0, 150}, anim)
	f.c.StartClimbing()
	return f, anim
}

func TestSlopedLedgeWarpLivesUntilClimbToTopEnds(t *testing.T) {
	f, _ := newSlopedLedge(t)

	assert.False(t, f.c.HasReachedTheLedge())
	_, ok := f.targets.Target(WarpLedge)
	assert.False(t, ok, "no warp while not climbing upward")

	f.body.Velocity = mgl64.Vec3{0, 0, 50}
	require.True(t, f.c.HasReachedTheLedge())
	assert.Greater(t, f.c.ledgeSlopeDeg, 10.0)

	target, ok := f.targets.Target(WarpLedge)
	require.True(t, ok)
	assert.InDelta(t, slopedLedgeZ, target.Z(), 1e-9)
	assert.Equal(t, f.c.LedgeTarget(), target)

	f.c.OnAnimationSegmentEnded(animation.Clip("ClimbToTop"), false)
	assert.Equal(t, character.ModeWalking, f.c.Mode())
	_, ok = f.targets.Target(WarpLedge)
	assert.False(t, ok)
}

func TestStaleLedgeWarpIsCleared(t *testing.T) {
	f, _ := newSlopedLedge(t)

	f.body.Velocity = mgl64.Vec3{0, 0, 50}
	require.True(t, f.c.HasReachedTheLedge())
	f.body.Velocity = mgl64.Vec3{}
	assert.False(t, f.c.HasReachedTheLedge())
	_, ok := f.targets.Target(WarpLedge)
	assert.False(t, ok, "slowed below reach speed")

	f.body.Velocity = mgl64.Vec3{0, 0, 50}
	require.True(t, f.c.HasReachedTheLedge())
	f.c.StopClimbing()
	_, ok = f.targets.Target(WarpLedge)
	assert.False(t, ok, "released before the clip played")
}

func TestLedgeWarpSurvivesClimbEndDuringClimbToTop(t *testing.T) {
	f, anim := newSlopedLedge(t)

	f.body.Velocity = mgl64.Vec3{0, 0, 50}
	require.True(t, f.c.HasReachedTheLedge())
	require.True(t, f.c.playMontage(TransitionClimbToTop, f.c.clips.climbToTop, WarpLedge))

	f.c.StopClimbing()
	_, ok := f.targets.Target(WarpLedge)
	assert.True(t, ok)

	anim.stop()
	f.c.OnAnimationSegmentEnded(f.c.clips.climbToTop, false)
	_, ok = f.targets.Target(WarpLedge)
	assert.False(t, ok)
}

func TestHasReachedTheLedgeNeedsStandingRoom(t *testing.T) {
	s := tallWall(scene.New(), 200)
	s.AddBox(mgl64.Vec3{50, -500, 330}, mgl64.Vec3{445, 500, 350}, world.ChannelWorldStatic)
	f := newFixture(t, s, mgl64.Vec3{0, 0, 150}, &fakeAnimator{})
	f.c.StartClimbing()
	f.body.Velocity = mgl64.Vec3{0, 0, 50}

	assert.False(t, f.c.HasReachedTheLedge())
	assert.Equal(t, mgl64.Vec3{}, f.c.LedgeTarget())
}

func TestRoomForCapsuleRejectsEmbeddedStart(t *testing.T) {
	s := scene.New()
	s.AddBox(mgl64.Vec3{-200, -500, 300}, mgl64.Vec3{80, 500, 320}, world.ChannelWorldStatic)
	f := newFixture(t, s, mgl64.Vec3{0, 0, 100}, nil)

	start := mgl64.Vec3{87.5, 0, 290}
	assert.False(t, f.c.sensor.RoomForCapsule(start, start.Add(mgl64.Vec3{0, 0, 1}), 50, 90))
	assert.False(t, f.c.sensor.RoomForCapsule(start, start.Add(mgl64.Vec3{100, 0, 0}), 50, 90))

	free := mgl64.Vec3{87.5, 0, 100}
	assert.True(t, f.c.sensor.RoomForCapsule(free, free.Add(mgl64.Vec3{100, 0, 0}), 50, 90))
}

func TestInterruptedClipStillResolvesPending(t *testing.T) {
	s := withFloor(scene.New())
	s.AddBox(mgl64.Vec3{60, -500, 0}, mgl64.Vec3{100, 500, 400}, world.ChannelWorldStatic)

	ccfg := character.DefaultConfig()
	body := character.NewBody(7, mgl64.Vec3{0, 0, 90.15}, ccfg)
	mv, err := character.NewMovement(body, s, ccfg, log.NewNop())
	require.NoError(t, err)

	events := bus.New()
	targets := warp.NewTargets()
	lib, err := animation.NewLibrary(clipDefs()...)
	require.NoError(t, err)
	montages := animation.NewMontages(lib, events, targets, "climber")

	c, err := New(DefaultConfig(), Deps{Movement: mv, Animator: montages, Warps: targets, Events: events})
	require.NoError(t, err)
	defer c.Close()

	var seen []TransitionEvent
	_, err = events.Subscribe(EventTransition, func(e bus.Event) error {
		seen = append(seen, e.Data().(TransitionEvent))
		return nil
	})
	require.NoError(t, err)

	c.Tick(tick)
	require.True(t, c.ToggleClimbing(true))
	_, ok := c.Pending()
	require.True(t, ok)

	montages.Stop()
	require.NoError(t, events.Flush())

	_, ok = c.Pending()
	assert.False(t, ok)
	assert.True(t, c.IsClimbing())
	require.Len(t, seen, 2)
	assert.Equal(t, TransitionEnterClimb, seen[1].Kind)
	assert.Equal(t, PhaseResolved, seen[1].Phase)
	assert.True(t, seen[1].Interrupted)
}

package climb

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/events/bus"
	"github.com/zeusync/climbforge/internal/core/observability/debugdraw"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/core/warp"
	"github.com/zeusync/climbforge/internal/core/world"
	"github.com/zeusync/climbforge/internal/core/world/scene"
)

const tick = 1.0 / 60

type fakeAnimator struct {
	plays   []animation.ClipID
	active  animation.ClipID
	playing bool
}

func (f *fakeAnimator) Play(id animation.ClipID) bool {
	f.plays = append(f.plays, id)
	f.active, f.playing = id, true
	return true
}

func (f *fakeAnimator) IsAnyPlaying() bool { return f.playing }

func (f *fakeAnimator) IsPlaying(id animation.ClipID) bool { return f.playing && f.active == id }

func (f *fakeAnimator) stop() { f.playing = false }

type fixture struct {
	c       *Component
	body    *character.Body
	targets *warp.Targets
}

func newFixture(t *testing.T, q world.Query, pos mgl64.Vec3, anim Animator) fixture {
	t.Helper()
	ccfg := character.DefaultConfig()
	body := character.NewBody(7, pos, ccfg)
	mv, err := character.NewMovement(body, q, ccfg, log.NewNop())
	require.NoError(t, err)
	targets := warp.NewTargets()
	c, err := New(DefaultConfig(), Deps{
		Movement: mv,
		Animator: anim,
		Warps:    targets,
		Log:      log.NewNop(),
	})
	require.NoError(t, err)
	return fixture{c: c, body: body, targets: targets}
}

func withFloor(s *scene.Scene) *scene.Scene {
	s.AddBox(mgl64.Vec3{-2000, -2000, -20}, mgl64.Vec3{2000, 2000, 0}, world.ChannelWorldStatic)
	return s
}

// tallWall is a wall facing -X whose face sits one grip offset in front of the origin.
func tallWall(s *scene.Scene, top float64) *scene.Scene {
	s.AddBox(mgl64.Vec3{45, -500, 0}, mgl64.Vec3{445, 500, top}, world.ChannelWorldStatic)
	return s
}

func clipDefs() []animation.ClipDef {
	n := DefaultConfig().Clips
	var defs []animation.ClipDef
	for _, name := range []string{n.IdleToClimb, n.ClimbDown, n.ClimbToTop, n.Vault, n.DashUp, n.DashDown, n.DashLeft, n.DashRight} {
		defs = append(defs, animation.ClipDef{Name: name, Duration: 0.5, BlendOut: 0.1})
	}
	return defs
}

func TestNewValidates(t *testing.T) {
	_, err := New(DefaultConfig(), Deps{})
	assert.ErrorIs(t, err, ErrNilMovement)

	bad := DefaultConfig()
	bad.Physics.MaxClimbSpeed = 0
	_, err = New(bad, Deps{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCapsuleHeightRoundTrip(t *testing.T) {
	for _, hh := range []float64{90, 87.3, 61.25} {
		f := newFixture(t, scene.New(), mgl64.Vec3{0, 0, 500}, nil)
		f.body.Capsule.HalfHeight = hh

		f.c.StartClimbing()
		require.True(t, f.c.IsClimbing())
		assert.Equal(t, hh*0.5, f.body.Capsule.HalfHeight)
		assert.False(t, f.body.OrientToMovement)

		f.body.Velocity = mgl64.Vec3{10, 0, 40}
		f.c.StopClimbing()
		assert.Equal(t, character.ModeFalling, f.c.Mode())
		assert.Equal(t, hh, f.body.Capsule.HalfHeight)
		assert.True(t, f.body.OrientToMovement)
		assert.Equal(t, mgl64.Vec3{}, f.body.Velocity)
	}
}

func TestEnterAndExitCallbacks(t *testing.T) {
	f := newFixture(t, scene.New(), mgl64.Vec3{0, 0, 500}, nil)
	var entered, exited int
	f.c.OnEnterClimbing(func() { entered++ })
	f.c.OnExitClimbing(func() { exited++ })

	f.c.StartClimbing()
	f.c.StartClimbing()
	f.c.StopClimbing()

	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, exited)
}

func TestClimbingWithoutSurfaceFalls(t *testing.T) {
	f := newFixture(t, scene.New(), mgl64.Vec3{0, 0, 500}, &fakeAnimator{})
	f.c.StartClimbing()

	f.c.Tick(tick)

	assert.Equal(t, character.ModeFalling, f.c.Mode())
	assert.Equal(t, 90.0, f.body.Capsule.HalfHeight)
}

func TestClimbingUpAlongWall(t *testing.T) {
	f := newFixture(t, tallWall(scene.New(), 1000), mgl64.Vec3{0, 0, 300}, &fakeAnimator{})
	f.c.StartClimbing()

	for i := 0; i < 30; i++ {
		f.c.Movement().AddInput(mgl64.Vec3{0, 0, 1})
		f.c.Tick(tick)
	}

	require.True(t, f.c.IsClimbing())
	assert.Greater(t, f.body.Position.Z(), 305.0)
	assert.InDelta(t, 0, f.body.Position.X(), 1)
	assert.LessOrEqual(t, f.body.Velocity.Len(), DefaultConfig().Physics.MaxClimbSpeed+1e-6)
	assert.InDelta(t, -1, f.c.Surface().Normal.X(), 1e-6)
}

func TestSnapConvergesToGripOffset(t *testing.T) {
	f := newFixture(t, tallWall(scene.New(), 1000), mgl64.Vec3{-30, 0, 300}, &fakeAnimator{})
	f.c.surface = AggregateSurface{Location: mgl64.Vec3{45, 0, 300}, Normal: mgl64.Vec3{-1, 0, 0}}
	grip := DefaultConfig().Physics.GripOffset

	dist := func() float64 { return 45 - f.body.Position.X() }
	prev := dist()
	for i := 0; i < 60; i++ {
		f.c.snapToClimbableSurface(tick)
		d := dist()
		assert.Less(t, d, prev)
		assert.GreaterOrEqual(t, d, grip)
		prev = d
	}
	assert.InDelta(t, grip, prev, 0.5)
	assert.InDelta(t, 0, f.c.SnapDelta(tick).Len(), 0.05)
}

func TestSnapSkippedWhileDashing(t *testing.T) {
	f := newFixture(t, tallWall(scene.New(), 1000), mgl64.Vec3{-30, 0, 300}, &fakeAnimator{})
	f.c.surface = AggregateSurface{Location: mgl64.Vec3{45, 0, 300}, Normal: mgl64.Vec3{-1, 0, 0}}
	f.c.dashInProgress = true

	f.c.snapToClimbableSurface(tick)
	assert.Equal(t, -30.0, f.body.Position.X())
}

func TestToggleClimbingPlaysEntryOnce(t *testing.T) {
	anim := &fakeAnimator{}
	s := withFloor(scene.New())
	s.AddBox(mgl64.Vec3{60, -500, 0}, mgl64.Vec3{100, 500, 400}, world.ChannelWorldStatic)
	f := newFixture(t, s, mgl64.Vec3{0, 0, 90.15}, anim)
	f.c.Tick(tick)

	require.True(t, f.c.CanStartClimbing())
	assert.True(t, f.c.ToggleClimbing(true))
	assert.False(t, f.c.ToggleClimbing(true))
	assert.False(t, f.c.ToggleClimbing(true))
	assert.Equal(t, []animation.ClipID{animation.Clip("IdleToClimb")}, anim.plays)

	p, ok := f.c.Pending()
	require.True(t, ok)
	assert.Equal(t, TransitionEnterClimb, p.Kind)
	assert.False(t, f.c.IsClimbing())

	anim.stop()
	f.c.OnAnimationSegmentEnded(animation.Clip("IdleToClimb"), false)
	assert.True(t, f.c.IsClimbing())
	_, ok = f.c.Pending()
	assert.False(t, ok)

	assert.True(t, f.c.ToggleClimbing(false))
	assert.Equal(t, character.ModeFalling, f.c.Mode())
}

func TestClipEndEventCommitsClimbing(t *testing.T) {
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
	assert.False(t, c.ToggleClimbing(true))

	montages.Advance(0.5)
	assert.False(t, c.IsClimbing())
	require.NoError(t, events.Flush())

	assert.True(t, c.IsClimbing())
	require.Len(t, seen, 2)
	assert.Equal(t, TransitionEnterClimb, seen[0].Kind)
	assert.Equal(t, PhaseStarted, seen[0].Phase)
	assert.Equal(t, PhaseResolved, seen[1].Phase)
	assert.False(t, seen[1].Interrupted)
}

func TestClimbToTopWalksOntoLedge(t *testing.T) {
	anim := &fakeAnimator{}
	f := newFixture(t, tallWall(scene.New(), 200), mgl64.Vec3{0, 0, 150}, anim)
	f.c.StartClimbing()

	require.False(t, f.c.HasReachedTheLedge())
	target := f.c.LedgeTarget()
	assert.InDelta(t, 87.5, target.X(), 1e-9)
	assert.InDelta(t, 200, target.Z(), 1e-9)
	_, warped := f.targets.Target(WarpLedge)
	assert.False(t, warped)

	f.body.Velocity = mgl64.Vec3{0, 0, 50}
	assert.True(t, f.c.HasReachedTheLedge())

	f.c.OnAnimationSegmentEnded(animation.Clip("ClimbToTop"), false)
	assert.Equal(t, character.ModeWalking, f.c.Mode())
	assert.InDelta(t, 290, f.body.Position.Z(), 1e-9)
	require.True(t, f.c.IsMovingToLedgeTarget())

	f.c.updateLedgeWalk()
	assert.InDelta(t, 230, f.body.Velocity.X(), 1e-9)
	assert.Zero(t, f.body.Velocity.Z())
	assert.Equal(t, f.body.Velocity, f.body.Acceleration)
	assert.True(t, f.c.AnimState().ShouldMove)

	f.body.Position = mgl64.Vec3{85, 0, 290}
	f.c.updateLedgeWalk()
	assert.False(t, f.c.IsMovingToLedgeTarget())
	assert.Equal(t, mgl64.Vec3{}, f.body.Velocity)
	assert.Equal(t, mgl64.Vec3{}, f.c.LedgeTarget())
}

func TestUnknownClipEndIsIgnored(t *testing.T) {
	f := newFixture(t, scene.New(), mgl64.Vec3{0, 0, 500}, &fakeAnimator{})
	f.c.OnAnimationSegmentEnded(animation.Clip("Wave"), true)
	assert.Equal(t, character.ModeWalking, f.c.Mode())
}

func TestSensorDrawsWhenEnabled(t *testing.T) {
	ccfg := character.DefaultConfig()
	body := character.NewBody(7, mgl64.Vec3{0, 0, 300}, ccfg)
	mv, err := character.NewMovement(body, tallWall(scene.New(), 1000), ccfg, nil)
	require.NoError(t, err)
	rec := &debugdraw.Recorder{}
	cfg := DefaultConfig()
	cfg.DrawDebug = true
	c, err := New(cfg, Deps{Movement: mv, Draw: rec})
	require.NoError(t, err)

	c.Tick(tick)
	c.Sensor().Aggregate(c.Hits())

	sweeps := rec.Labeled(LabelSurfaceSweep)
	require.NotEmpty(t, sweeps)
	assert.True(t, sweeps[len(sweeps)-1].Hit)
	assert.NotEmpty(t, rec.Labeled(LabelSurfaceProbe))
}

func TestAnimState(t *testing.T) {
	f := newFixture(t, scene.New(), mgl64.Vec3{0, 0, 500}, nil)
	f.body.Velocity = mgl64.Vec3{3, 4, -20}
	f.body.Acceleration = mgl64.Vec3{1, 0, 0}

	st := f.c.AnimState()
	assert.Equal(t, 5.0, st.GroundSpeed)
	assert.Equal(t, -20.0, st.AirSpeed)
	assert.True(t, st.ShouldMove)
	assert.False(t, st.IsClimbing)
	assert.Equal(t, f.body.Velocity, st.ClimbVelocity)
}

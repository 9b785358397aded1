package climb

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/world"
	"github.com/zeusync/climbforge/internal/core/world/scene"
)

// vaultCourse places a 100 high obstacle whose top starts under the first probe at
// x=50 and runs for length units.
func vaultCourse(length float64) *scene.Scene {
	s := withFloor(scene.New())
	s.AddBox(mgl64.Vec3{40, -200, 0}, mgl64.Vec3{50 + length - 10, 200, 100}, world.ChannelWorldStatic)
	return s
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-6, "component %d of %v", i, got)
	}
}

func TestVaultLandsBeyondObstacleEdge(t *testing.T) {
	f := newFixture(t, vaultCourse(250), mgl64.Vec3{0, 0, 90.15}, nil)

	start, land, ok := f.c.CanStartVaulting()
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{50, 0, 100}, start)
	assertVecNear(t, mgl64.Vec3{330, 0, 0}, land)
}

func TestVaultFallsBackToLastObstacleHit(t *testing.T) {
	f := newFixture(t, vaultCourse(400), mgl64.Vec3{0, 0, 90.15}, nil)

	_, land, ok := f.c.CanStartVaulting()
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{350, 0, 100}, land)
}

func TestVaultRejectsWallsAndEmptyGround(t *testing.T) {
	wall := withFloor(scene.New())
	wall.AddBox(mgl64.Vec3{40, -200, 0}, mgl64.Vec3{300, 200, 180}, world.ChannelWorldStatic)
	f := newFixture(t, wall, mgl64.Vec3{0, 0, 90.15}, nil)
	_, _, ok := f.c.CanStartVaulting()
	assert.False(t, ok)

	f = newFixture(t, withFloor(scene.New()), mgl64.Vec3{0, 0, 90.15}, nil)
	_, _, ok = f.c.CanStartVaulting()
	assert.False(t, ok)

	f = newFixture(t, vaultCourse(250), mgl64.Vec3{0, 0, 90.15}, nil)
	f.c.Movement().SetMode(character.ModeFalling)
	_, _, ok = f.c.CanStartVaulting()
	assert.False(t, ok)
}

func TestTryStartVaultingSetsWarpsUntilResolved(t *testing.T) {
	anim := &fakeAnimator{}
	f := newFixture(t, vaultCourse(250), mgl64.Vec3{0, 0, 90.15}, anim)

	require.True(t, f.c.ToggleClimbing(true))
	assert.Equal(t, []animation.ClipID{animation.Clip("Vaulting")}, anim.plays)
	_, ok := f.targets.Target(WarpVaultStart)
	assert.True(t, ok)
	land, ok := f.targets.Target(WarpVaultLand)
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{330, 0, 0}, land)

	anim.stop()
	f.c.OnAnimationSegmentEnded(animation.Clip("Vaulting"), false)
	assert.Zero(t, f.targets.Len())
	assert.Equal(t, character.ModeWalking, f.c.Mode())
}

func TestResolveDashDirectionIsTotal(t *testing.T) {
	valid := map[Direction]bool{
		DirectionInvalid: true, DirectionUp: true, DirectionDown: true, DirectionLeft: true, DirectionRight: true,
	}
	for v := -1.0; v <= 1.0001; v += 0.05 {
		for h := -1.0; h <= 1.0001; h += 0.05 {
			d := ResolveDashDirection(v, h, 0.9)
			require.True(t, valid[d])
			opposite := ResolveDashDirection(-v, -h, 0.9)
			if d != DirectionInvalid {
				assert.NotEqual(t, d, opposite, "v=%.2f h=%.2f", v, h)
			}
		}
	}
	assert.Equal(t, DirectionUp, ResolveDashDirection(1, 0, 0.9))
	assert.Equal(t, DirectionDown, ResolveDashDirection(-1, 0, 0.9))
	assert.Equal(t, DirectionRight, ResolveDashDirection(0, 1, 0.9))
	assert.Equal(t, DirectionLeft, ResolveDashDirection(0, -1, 0.9))
	assert.Equal(t, DirectionInvalid, ResolveDashDirection(0.7, 0.7, 0.9))
}

func climbingOnWall(t *testing.T, s *scene.Scene, anim Animator) fixture {
	t.Helper()
	f := newFixture(t, s, mgl64.Vec3{0, 0, 300}, anim)
	f.c.StartClimbing()
	require.True(t, f.c.IsClimbing())
	return f
}

func TestCanStartClimbDashProbes(t *testing.T) {
	f := climbingOnWall(t, tallWall(scene.New(), 1000), &fakeAnimator{})

	up, ok := f.c.CanStartClimbDash(DirectionUp)
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{45, 0, 344}, up)

	down, ok := f.c.CanStartClimbDash(DirectionDown)
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{45, 0, 64}, down)

	left, ok := f.c.CanStartClimbDash(DirectionLeft)
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{45, -150, 210}, left)

	right, ok := f.c.CanStartClimbDash(DirectionRight)
	require.True(t, ok)
	assertVecNear(t, mgl64.Vec3{45, 150, 210}, right)

	_, ok = f.c.CanStartClimbDash(DirectionInvalid)
	assert.False(t, ok)
}

func TestCanStartClimbDashNeedsEdgeSurface(t *testing.T) {
	s := scene.New()
	s.AddBox(mgl64.Vec3{45, -100, 0}, mgl64.Vec3{445, 100, 400}, world.ChannelWorldStatic)
	f := climbingOnWall(t, s, &fakeAnimator{})

	_, ok := f.c.CanStartClimbDash(DirectionLeft)
	assert.False(t, ok)
	_, ok = f.c.CanStartClimbDash(DirectionRight)
	assert.False(t, ok)
	// Eye probe at 344 hits, edge probe at 514 clears the wall top.
	_, ok = f.c.CanStartClimbDash(DirectionUp)
	assert.False(t, ok)
	_, ok = f.c.CanStartClimbDash(DirectionDown)
	assert.True(t, ok)
}

func TestLateralDashRestoresHeight(t *testing.T) {
	anim := &fakeAnimator{}
	f := climbingOnWall(t, tallWall(scene.New(), 1000), anim)

	require.True(t, f.c.TryPerformClimbDash(DirectionLeft))
	assert.True(t, f.c.IsDashInProgress())
	hop, ok := f.targets.Target(WarpHop)
	require.True(t, ok)
	assert.InDelta(t, 210, hop.Z(), 1e-6)
	assert.False(t, f.c.TryPerformClimbDash(DirectionRight))

	f.body.Position = mgl64.Vec3{0, -150, 320}
	anim.stop()
	f.c.OnAnimationSegmentEnded(animation.Clip("DashLeft"), false)

	assert.Equal(t, 300.0, f.body.Position.Z())
	assert.False(t, f.c.IsDashInProgress())
	_, ok = f.targets.Target(WarpHop)
	assert.False(t, ok)
}

func TestDashRequiresClimbing(t *testing.T) {
	anim := &fakeAnimator{}
	f := newFixture(t, tallWall(scene.New(), 1000), mgl64.Vec3{0, 0, 300}, anim)
	assert.False(t, f.c.TryPerformClimbDash(DirectionUp))
	assert.Empty(t, anim.plays)
}

func TestRequestDashFromInput(t *testing.T) {
	anim := &fakeAnimator{}
	f := climbingOnWall(t, tallWall(scene.New(), 1000), anim)

	f.c.Movement().AddInput(mgl64.Vec3{0, 0.7, 0.7})
	f.c.Movement().Step(0)
	assert.Equal(t, DirectionInvalid, f.c.DashDirectionFromInput())
	assert.False(t, f.c.RequestDash())
	assert.Empty(t, anim.plays)

	f.c.Movement().AddInput(mgl64.Vec3{0, 0, 1})
	f.c.Movement().Step(0)
	assert.Equal(t, DirectionUp, f.c.DashDirectionFromInput())
	require.True(t, f.c.RequestDash())
	assert.Equal(t, []animation.ClipID{animation.Clip("DashUp")}, anim.plays)

	p, ok := f.c.Pending()
	require.True(t, ok)
	assert.Equal(t, TransitionDashUp, p.Kind)
	assert.Equal(t, []string{WarpHop}, p.Warps)
}

func TestClimbInputAxes(t *testing.T) {
	f := climbingOnWall(t, tallWall(scene.New(), 1000), nil)
	f.c.surface = AggregateSurface{Location: mgl64.Vec3{45, 0, 300}, Normal: mgl64.Vec3{-1, 0, 0}}

	fwd, right := f.c.ClimbInputAxes()
	assertVecNear(t, mgl64.Vec3{0, 0, 1}, fwd)
	assertVecNear(t, mgl64.Vec3{0, 1, 0}, right)
}

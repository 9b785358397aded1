package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/world"
	"github.com/zeusync/climbforge/internal/core/world/scene"
)

// standHeight puts a default capsule just above a floor at z=0.
const standHeight = 90.15

var (
	inputForward = mgl64.Vec3{1, 0, 0}
	inputRight   = mgl64.Vec3{0, 1, 0}
)

// DemoCourse builds three lanes on one floor: a wall with a walkable top, a low
// obstacle to vault and a tall wall for dashing.
func DemoCourse() *scene.Scene {
	s := scene.New()
	s.AddBox(mgl64.Vec3{-2000, -2000, -20}, mgl64.Vec3{2000, 2000, 0}, world.ChannelWorldStatic)

	// Ledge lane, y = 0.
	s.AddBox(mgl64.Vec3{60, -300, 0}, mgl64.Vec3{460, 300, 300}, world.ChannelWorldStatic)
	// Vault lane, y = 1000.
	s.AddBox(mgl64.Vec3{40, 800, 0}, mgl64.Vec3{290, 1200, 100}, world.ChannelWorldStatic)
	// Dash lane, y = -1000.
	s.AddBox(mgl64.Vec3{60, -1400, 0}, mgl64.Vec3{460, -600, 900}, world.ChannelWorldStatic)
	return s
}

// DemoActors scripts one actor per lane of DemoCourse.
func DemoActors() []ActorOptions {
	return []ActorOptions{
		{
			Name:     "climber",
			ID:       101,
			Position: mgl64.Vec3{0, 0, standHeight},
			Script: []Command{
				{From: 2, To: 2, Action: ActionClimb},
				{From: 45, To: 600, Input: inputForward},
			},
		},
		{
			Name:     "vaulter",
			ID:       102,
			Position: mgl64.Vec3{0, 1000, standHeight},
			Script: []Command{
				{From: 2, To: 2, Action: ActionClimb},
				{From: 90, To: 180, Input: inputForward},
			},
		},
		{
			Name:     "dasher",
			ID:       103,
			Position: mgl64.Vec3{0, -1000, standHeight},
			Script: []Command{
				{From: 2, To: 2, Action: ActionClimb},
				{From: 45, To: 70, Input: inputForward},
				{From: 70, To: 70, Action: ActionDash},
				{From: 120, To: 140, Input: inputRight},
				{From: 140, To: 140, Action: ActionDash},
				{From: 200, To: 200, Action: ActionRelease},
			},
		},
	}
}

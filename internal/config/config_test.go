package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/climbforge/internal/core/animation"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.InDelta(t, 1.0/60, cfg.TickSeconds(), 1e-12)

	lib, err := cfg.Library()
	require.NoError(t, err)
	assert.Equal(t, 8, lib.Len())
}

func TestLoadOverlaysFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "climbforge.yaml", `
log:
  level: debug
character:
  max_walk_speed: 450
climb:
  physics:
    max_climb_speed: 150
clips:
  - {name: IdleToClimb, duration: 0.4}
  - {name: ClimbDownLedge, duration: 1}
  - {name: ClimbToTop, duration: 1, root_motion: true, velocity: [40, 0, 150]}
  - {name: Vaulting, duration: 1}
  - {name: DashUp, duration: 0.5}
  - {name: DashDown, duration: 0.5}
  - {name: DashLeft, duration: 0.5}
  - {name: DashRight, duration: 0.5}
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 450.0, cfg.Character.MaxWalkSpeed)
	assert.Equal(t, 150.0, cfg.Climb.Physics.MaxClimbSpeed)
	assert.Equal(t, 300.0, cfg.Climb.Physics.MaxClimbAcceleration)
	require.Len(t, cfg.Clips, 8)
	assert.Equal(t, []float64{40, 0, 150}, cfg.Clips[2].Velocity)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "broken.yaml", "climb: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "bad.yaml", "sim:\n  tick_rate: 0\nlog:\n  level: loud\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeFile(t, dir, "noclips.yaml", "clips:\n  - {name: IdleToClimb, duration: 1}\n"))
	assert.ErrorIs(t, err, ErrMissingClip)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvDebugAddr, ":7070")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7070", cfg.Debug.Addr)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	require.NoError(t, os.Unsetenv(EnvConfig))
	p := writeFile(t, dir, ".env", EnvConfig+"=/etc/climbforge.yaml\n")

	require.NoError(t, LoadEnv(filepath.Join(dir, "absent.env"), p))
	assert.Equal(t, "/etc/climbforge.yaml", Path(""))
	assert.Equal(t, "course.yaml", Path("course.yaml"))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	p := writeFile(t, t.TempDir(), "climbforge.yaml", "sim:\n  tick_rate: 60\n")
	w, err := Watch(p, nil)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Dir(p), "climbforge.yaml", "sim:\n  tick_rate: 30\n")

	select {
	case cfg := <-w.Updates:
		assert.Equal(t, 30, cfg.Sim.TickRate)
		assert.Equal(t, animation.Clip("IdleToClimb"), cfg.Clips[0].ID())
	case err := <-w.Errors:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "climbforge.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Climb, cfg.Climb)
	assert.Equal(t, Default().Character, cfg.Character)
	assert.Len(t, cfg.Clips, len(DefaultClips()))
	for _, want := range DefaultClips() {
		if want.Name != "ClimbToTop" {
			continue
		}
		for _, got := range cfg.Clips {
			if got.Name == want.Name {
				assert.Equal(t, want, got)
			}
		}
	}
}

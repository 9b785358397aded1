// Package config loads the simulation settings: logging, character movement,
// climbing tuning, the animation clip library and the debug endpoint.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/zeusync/climbforge/internal/core/animation"
	"github.com/zeusync/climbforge/internal/core/character"
	"github.com/zeusync/climbforge/internal/core/climb"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvConfig    = "CLIMBFORGE_CONFIG"
	EnvLogLevel  = "CLIMBFORGE_LOG_LEVEL"
	EnvDebugAddr = "CLIMBFORGE_DEBUG_ADDR"
)

var (
	ErrInvalidConfig = errors.New("config: invalid config")
	ErrMissingClip   = errors.New("config: missing clip")
)

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type SimConfig struct {
	// TickRate is the number of simulation steps per second.
	TickRate int `yaml:"tick_rate" json:"tick_rate"`
}

type DebugConfig struct {
	// Addr serves the debug draw websocket when set, e.g. ":7070".
	Addr string `yaml:"addr" json:"addr"`
	// Buffer is the number of frames queued for broadcast before new frames are dropped.
	Buffer int `yaml:"buffer" json:"buffer"`
}

type Config struct {
	Log       LogConfig           `yaml:"log" json:"log"`
	Sim       SimConfig           `yaml:"sim" json:"sim"`
	Character character.Config    `yaml:"character" json:"character"`
	Climb     climb.Config        `yaml:"climb" json:"climb"`
	Clips     []animation.ClipDef `yaml:"clips" json:"clips"`
	Debug     DebugConfig         `yaml:"debug" json:"debug"`
}

func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info"},
		Sim:       SimConfig{TickRate: 60},
		Character: character.DefaultConfig(),
		Climb:     climb.DefaultConfig(),
		Clips:     DefaultClips(),
		Debug:     DebugConfig{Buffer: 64},
	}
}

// DefaultClips is a clip library matching the default climb clip names.
func DefaultClips() []animation.ClipDef {
	return []animation.ClipDef{
		{Name: "IdleToClimb", Duration: 0.6, BlendOut: 0.1},
		{Name: "ClimbDownLedge", Duration: 1.2, BlendOut: 0.2, RootMotion: true, Velocity: []float64{90, 0, -120}},
		{
			Name: "ClimbToTop", Duration: 1.4, BlendOut: 0.2, RootMotion: true, Velocity: []float64{140, 0, 0},
			Warps:  []animation.WarpWindow{{Target: climb.WarpLedge, Until: 0.85}},
			Phases: []animation.RootPhase{{Until: 0.5, Velocity: []float64{0, 0, 280}}},
		},
		{
			Name: "Vaulting", Duration: 1.1, BlendOut: 0.1, RootMotion: true, Velocity: []float64{300, 0, 0},
			Warps: []animation.WarpWindow{{Target: climb.WarpVaultStart, Until: 0.4}, {Target: climb.WarpVaultLand, Until: 0.85}},
		},
		dashClip("DashUp", 0, 0, 300),
		dashClip("DashDown", 0, 0, -300),
		dashClip("DashLeft", 0, -300, 0),
		dashClip("DashRight", 0, 300, 0),
	}
}

func dashClip(name string, x, y, z float64) animation.ClipDef {
	return animation.ClipDef{
		Name: name, Duration: 0.5, BlendOut: 0.1, RootMotion: true, Velocity: []float64{x, y, z},
		Warps: []animation.WarpWindow{{Target: climb.WarpHop, Until: 0.8}},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv loads .env style files into the process environment. Missing files are
// skipped and variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load env %s: %w", f, err)
		}
	}
	return nil
}

// Path returns the config file to load: the flag value when set, otherwise the
// CLIMBFORGE_CONFIG environment variable.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvConfig)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvDebugAddr); v != "" {
		c.Debug.Addr = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate must be > 0"))
	}
	if c.Debug.Buffer < 0 {
		errs = append(errs, fmt.Errorf("debug.buffer must be >= 0"))
	}
	if err := c.Character.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Climb.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Library(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Library builds the clip library and checks that every climb transition has a clip.
func (c Config) Library() (*animation.Library, error) {
	lib, err := animation.NewLibrary(c.Clips...)
	if err != nil {
		return nil, err
	}
	n := c.Climb.Clips
	var missing []error
	for _, name := range []string{n.IdleToClimb, n.ClimbDown, n.ClimbToTop, n.Vault, n.DashUp, n.DashDown, n.DashLeft, n.DashRight} {
		if _, ok := lib.Get(animation.Clip(name)); !ok {
			missing = append(missing, fmt.Errorf("%w: %q", ErrMissingClip, name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return lib, nil
}

// TickSeconds is the fixed simulation step.
func (c Config) TickSeconds() float64 {
	return 1 / float64(c.Sim.TickRate)
}

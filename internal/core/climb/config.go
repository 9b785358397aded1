package climb

import (
	"errors"
	"fmt"

	"github.com/zeusync/climbforge/internal/core/world"
)

var ErrInvalidConfig = errors.New("climb: invalid config")

type SurfaceConfig struct {
	CapsuleRadius      float64 `yaml:"capsule_radius" json:"capsule_radius"`
	CapsuleHalfHeight  float64 `yaml:"capsule_half_height" json:"capsule_half_height"`
	ForwardOffset      float64 `yaml:"forward_offset" json:"forward_offset"`
	SweepLength        float64 `yaml:"sweep_length" json:"sweep_length"`
	RefineSphereRadius float64 `yaml:"refine_sphere_radius" json:"refine_sphere_radius"`
	RefineDistance     float64 `yaml:"refine_distance" json:"refine_distance"`
	FloorTraceOffset   float64 `yaml:"floor_trace_offset" json:"floor_trace_offset"`
}

type EligibilityConfig struct {
	MinClimbableAngleDeg float64 `yaml:"min_climbable_angle_deg" json:"min_climbable_angle_deg"`
	EyeTraceBaseLength   float64 `yaml:"eye_trace_base_length" json:"eye_trace_base_length"`
	SteepnessScale       float64 `yaml:"steepness_scale" json:"steepness_scale"`

	// Climbing stops when dot(surface normal, up) leaves [CeilingStopDot, FloorStopDot].
	FloorStopDot   float64 `yaml:"floor_stop_dot" json:"floor_stop_dot"`
	CeilingStopDot float64 `yaml:"ceiling_stop_dot" json:"ceiling_stop_dot"`

	FloorReachSpeed       float64 `yaml:"floor_reach_speed" json:"floor_reach_speed"`
	LedgeReachSpeed       float64 `yaml:"ledge_reach_speed" json:"ledge_reach_speed"`
	LedgeTraceRadiusScale float64 `yaml:"ledge_trace_radius_scale" json:"ledge_trace_radius_scale"`
	LedgeEyeOffset        float64 `yaml:"ledge_eye_offset" json:"ledge_eye_offset"`
	WalkableFloorZ        float64 `yaml:"walkable_floor_z" json:"walkable_floor_z"`

	ClimbDownWalkableOffset float64 `yaml:"climb_down_walkable_offset" json:"climb_down_walkable_offset"`
	ClimbDownWalkableDepth  float64 `yaml:"climb_down_walkable_depth" json:"climb_down_walkable_depth"`
	ClimbDownLedgeOffset    float64 `yaml:"climb_down_ledge_offset" json:"climb_down_ledge_offset"`
	ClimbDownLedgeDepth     float64 `yaml:"climb_down_ledge_depth" json:"climb_down_ledge_depth"`
}

type PhysicsConfig struct {
	MaxClimbSpeed        float64 `yaml:"max_climb_speed" json:"max_climb_speed"`
	MaxClimbAcceleration float64 `yaml:"max_climb_acceleration" json:"max_climb_acceleration"`
	Friction             float64 `yaml:"friction" json:"friction"`
	MaxBrakeDeceleration float64 `yaml:"max_brake_deceleration" json:"max_brake_deceleration"`
	RotationInterpSpeed  float64 `yaml:"rotation_interp_speed" json:"rotation_interp_speed"`
	GripOffset           float64 `yaml:"grip_offset" json:"grip_offset"`
	SnapSpeedScale       float64 `yaml:"snap_speed_scale" json:"snap_speed_scale"`
	CapsuleHeightScale   float64 `yaml:"capsule_height_scale" json:"capsule_height_scale"`
}

type VaultConfig struct {
	MinTraceDistance    float64 `yaml:"min_trace_distance" json:"min_trace_distance"`
	MaxTraceDistance    float64 `yaml:"max_trace_distance" json:"max_trace_distance"`
	ProbeHeight         float64 `yaml:"probe_height" json:"probe_height"`
	ProbeDepth          float64 `yaml:"probe_depth" json:"probe_depth"`
	LandingLift         float64 `yaml:"landing_lift" json:"landing_lift"`
	EdgeStep            float64 `yaml:"edge_step" json:"edge_step"`
	MaxObstacleLength   float64 `yaml:"max_obstacle_length" json:"max_obstacle_length"`
	GroundForwardOffset float64 `yaml:"ground_forward_offset" json:"ground_forward_offset"`
	GroundDepth         float64 `yaml:"ground_depth" json:"ground_depth"`
}

type DashConfig struct {
	TraceLength        float64 `yaml:"trace_length" json:"trace_length"`
	EyeOffset          float64 `yaml:"eye_offset" json:"eye_offset"`
	EdgeOffset         float64 `yaml:"edge_offset" json:"edge_offset"`
	DownEyeOffset      float64 `yaml:"down_eye_offset" json:"down_eye_offset"`
	DirectionThreshold float64 `yaml:"direction_threshold" json:"direction_threshold"`
}

type LedgeWalkConfig struct {
	Speed        float64 `yaml:"speed" json:"speed"`
	AcceptRadius float64 `yaml:"accept_radius" json:"accept_radius"`
}

// ClipNames maps each transition onto an animation clip name.
type ClipNames struct {
	IdleToClimb string `yaml:"idle_to_climb" json:"idle_to_climb"`
	ClimbDown   string `yaml:"climb_down" json:"climb_down"`
	ClimbToTop  string `yaml:"climb_to_top" json:"climb_to_top"`
	Vault       string `yaml:"vault" json:"vault"`
	DashUp      string `yaml:"dash_up" json:"dash_up"`
	DashDown    string `yaml:"dash_down" json:"dash_down"`
	DashLeft    string `yaml:"dash_left" json:"dash_left"`
	DashRight   string `yaml:"dash_right" json:"dash_right"`
}

type Config struct {
	Channel     world.Channel     `yaml:"channel" json:"channel"`
	Surface     SurfaceConfig     `yaml:"surface" json:"surface"`
	Eligibility EligibilityConfig `yaml:"eligibility" json:"eligibility"`
	Physics     PhysicsConfig     `yaml:"physics" json:"physics"`
	Vault       VaultConfig       `yaml:"vault" json:"vault"`
	Dash        DashConfig        `yaml:"dash" json:"dash"`
	LedgeWalk   LedgeWalkConfig   `yaml:"ledge_walk" json:"ledge_walk"`
	Clips       ClipNames         `yaml:"clips" json:"clips"`
	DrawDebug   bool              `yaml:"draw_debug" json:"draw_debug"`
}

func DefaultConfig() Config {
	return Config{
		Channel: world.ChannelWorldStatic,
		Surface: SurfaceConfig{
			CapsuleRadius:      50,
			CapsuleHalfHeight:  72,
			ForwardOffset:      25,
			SweepLength:        1,
			RefineSphereRadius: 5,
			RefineDistance:     100,
			FloorTraceOffset:   35,
		},
		Eligibility: EligibilityConfig{
			MinClimbableAngleDeg:    25,
			EyeTraceBaseLength:      80,
			SteepnessScale:          5,
			FloorStopDot:            0.8,
			CeilingStopDot:          -0.985,
			FloorReachSpeed:         10,
			LedgeReachSpeed:         10,
			LedgeTraceRadiusScale:   2.5,
			LedgeEyeOffset:          20,
			WalkableFloorZ:          0.71,
			ClimbDownWalkableOffset: 100,
			ClimbDownWalkableDepth:  100,
			ClimbDownLedgeOffset:    50,
			ClimbDownLedgeDepth:     200,
		},
		Physics: PhysicsConfig{
			MaxClimbSpeed:        100,
			MaxClimbAcceleration: 300,
			Friction:             0,
			MaxBrakeDeceleration: 400,
			RotationInterpSpeed:  5,
			GripOffset:           45,
			SnapSpeedScale:       5,
			CapsuleHeightScale:   0.5,
		},
		Vault: VaultConfig{
			MinTraceDistance:    50,
			MaxTraceDistance:    200,
			ProbeHeight:         100,
			ProbeDepth:          100,
			LandingLift:         20,
			EdgeStep:            50,
			MaxObstacleLength:   300,
			GroundForwardOffset: 30,
			GroundDepth:         500,
		},
		Dash: DashConfig{
			TraceLength:        100,
			EyeOffset:          -20,
			EdgeOffset:         150,
			DownEyeOffset:      -300,
			DirectionThreshold: 0.9,
		},
		LedgeWalk: LedgeWalkConfig{
			Speed:        230,
			AcceptRadius: 5,
		},
		Clips: ClipNames{
			IdleToClimb: "IdleToClimb",
			ClimbDown:   "ClimbDownLedge",
			ClimbToTop:  "ClimbToTop",
			Vault:       "Vaulting",
			DashUp:      "DashUp",
			DashDown:    "DashDown",
			DashLeft:    "DashLeft",
			DashRight:   "DashRight",
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", name))
		}
	}
	if c.Channel == 0 {
		errs = append(errs, fmt.Errorf("channel must be set"))
	}
	positive("surface.capsule_radius", c.Surface.CapsuleRadius)
	positive("surface.capsule_half_height", c.Surface.CapsuleHalfHeight)
	positive("surface.refine_distance", c.Surface.RefineDistance)
	positive("eligibility.eye_trace_base_length", c.Eligibility.EyeTraceBaseLength)
	if c.Eligibility.MinClimbableAngleDeg <= 0 || c.Eligibility.MinClimbableAngleDeg > 90 {
		errs = append(errs, fmt.Errorf("eligibility.min_climbable_angle_deg must be in (0, 90]"))
	}
	if c.Eligibility.CeilingStopDot >= c.Eligibility.FloorStopDot {
		errs = append(errs, fmt.Errorf("eligibility.ceiling_stop_dot must be below floor_stop_dot"))
	}
	positive("physics.max_climb_speed", c.Physics.MaxClimbSpeed)
	positive("physics.grip_offset", c.Physics.GripOffset)
	if c.Physics.CapsuleHeightScale <= 0 || c.Physics.CapsuleHeightScale > 1 {
		errs = append(errs, fmt.Errorf("physics.capsule_height_scale must be in (0, 1]"))
	}
	if c.Vault.MinTraceDistance > c.Vault.MaxTraceDistance {
		errs = append(errs, fmt.Errorf("vault.min_trace_distance must not exceed max_trace_distance"))
	}
	positive("vault.edge_step", c.Vault.EdgeStep)
	positive("vault.max_obstacle_length", c.Vault.MaxObstacleLength)
	positive("dash.trace_length", c.Dash.TraceLength)
	if c.Dash.DirectionThreshold <= 0 || c.Dash.DirectionThreshold >= 1 {
		errs = append(errs, fmt.Errorf("dash.direction_threshold must be in (0, 1)"))
	}
	positive("ledge_walk.speed", c.LedgeWalk.Speed)
	for name, clip := range map[string]string{
		"idle_to_climb": c.Clips.IdleToClimb,
		"climb_down":    c.Clips.ClimbDown,
		"climb_to_top":  c.Clips.ClimbToTop,
		"vault":         c.Clips.Vault,
		"dash_up":       c.Clips.DashUp,
		"dash_down":     c.Clips.DashDown,
		"dash_left":     c.Clips.DashLeft,
		"dash_right":    c.Clips.DashRight,
	} {
		if clip == "" {
			errs = append(errs, fmt.Errorf("clips.%s must be set", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

package character

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("character: invalid config")

// Config holds the base locomotion tuning of a character.
type Config struct {
	CapsuleRadius     float64 `yaml:"capsule_radius" json:"capsule_radius"`
	CapsuleHalfHeight float64 `yaml:"capsule_half_height" json:"capsule_half_height"`
	EyeHeight         float64 `yaml:"eye_height" json:"eye_height"`

	MaxWalkSpeed               float64 `yaml:"max_walk_speed" json:"max_walk_speed"`
	MaxAcceleration            float64 `yaml:"max_acceleration" json:"max_acceleration"`
	GroundFriction             float64 `yaml:"ground_friction" json:"ground_friction"`
	BrakingDecelerationWalking float64 `yaml:"braking_deceleration_walking" json:"braking_deceleration_walking"`
	AirControl                 float64 `yaml:"air_control" json:"air_control"`
	GravityZ                   float64 `yaml:"gravity_z" json:"gravity_z"`
	WalkableFloorZ             float64 `yaml:"walkable_floor_z" json:"walkable_floor_z"`
	MaxStepHeight              float64 `yaml:"max_step_height" json:"max_step_height"`
	RotationInterpSpeed        float64 `yaml:"rotation_interp_speed" json:"rotation_interp_speed"`

	MaxSimulationTimeStep   float64 `yaml:"max_simulation_time_step" json:"max_simulation_time_step"`
	MaxSimulationIterations int     `yaml:"max_simulation_iterations" json:"max_simulation_iterations"`
}

func DefaultConfig() Config {
	return Config{
		CapsuleRadius:              35,
		CapsuleHalfHeight:          90,
		EyeHeight:                  64,
		MaxWalkSpeed:               500,
		MaxAcceleration:            2048,
		GroundFriction:             8,
		BrakingDecelerationWalking: 2000,
		AirControl:                 0.35,
		GravityZ:                   -980,
		WalkableFloorZ:             0.71,
		MaxStepHeight:              45,
		RotationInterpSpeed:        10,
		MaxSimulationTimeStep:      0.05,
		MaxSimulationIterations:    8,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.CapsuleRadius <= 0 {
		errs = append(errs, fmt.Errorf("capsule_radius must be > 0"))
	}
	if c.CapsuleHalfHeight < c.CapsuleRadius {
		errs = append(errs, fmt.Errorf("capsule_half_height must be >= capsule_radius"))
	}
	if c.MaxWalkSpeed <= 0 {
		errs = append(errs, fmt.Errorf("max_walk_speed must be > 0"))
	}
	if c.MaxAcceleration < 0 {
		errs = append(errs, fmt.Errorf("max_acceleration must be >= 0"))
	}
	if c.WalkableFloorZ <= 0 || c.WalkableFloorZ > 1 {
		errs = append(errs, fmt.Errorf("walkable_floor_z must be in (0, 1]"))
	}
	if c.MaxSimulationTimeStep <= 0 || c.MaxSimulationIterations <= 0 {
		errs = append(errs, fmt.Errorf("simulation sub-stepping must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Package animation plays one montage at a time per actor and reports when it ends.
package animation

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrUnknownClip   = errors.New("animation: unknown clip")
	ErrDuplicateClip = errors.New("animation: duplicate clip")
	ErrInvalidClip   = errors.New("animation: invalid clip")
)

// EventClipEnded is published with an Ended payload when a clip blends out or is interrupted.
const EventClipEnded = "animation.clip_ended"

// ClipID is the hashed clip name.
type ClipID uint64

func Clip(name string) ClipID {
	return ClipID(xxhash.Sum64String(name))
}

type Ended struct {
	Clip        ClipID
	Name        string
	Interrupted bool
}

// WarpWindow aims root motion at a named warp target until the normalized time Until.
type WarpWindow struct {
	Target string  `yaml:"target" json:"target"`
	Until  float64 `yaml:"until" json:"until"`
}

// RootPhase overrides the authored velocity until the normalized time Until.
type RootPhase struct {
	Until    float64   `yaml:"until" json:"until"`
	Velocity []float64 `yaml:"velocity,flow" json:"velocity"`
}

type ClipDef struct {
	Name     string  `yaml:"name" json:"name"`
	Duration float64 `yaml:"duration" json:"duration"`
	BlendOut float64 `yaml:"blend_out" json:"blend_out"`
	// RootMotion clips drive the character's velocity while playing.
	RootMotion bool `yaml:"root_motion" json:"root_motion"`
	// Velocity is the authored root velocity in the actor frame, x forward, y right, z up.
	Velocity []float64   `yaml:"velocity,flow" json:"velocity"`
	Warps    []WarpWindow `yaml:"warps" json:"warps"`
	// Phases split the authored velocity over the clip. Past the last phase Velocity applies.
	Phases []RootPhase `yaml:"phases" json:"phases"`
}

func (d ClipDef) ID() ClipID {
	return Clip(d.Name)
}

func (d ClipDef) localVelocity(t float64) mgl64.Vec3 {
	src := d.Velocity
	for _, p := range d.Phases {
		if t < p.Until {
			src = p.Velocity
			break
		}
	}
	var v mgl64.Vec3
	copy(v[:], src)
	return v
}

func (d ClipDef) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidClip)
	case d.Duration <= 0:
		return fmt.Errorf("%w: %s: duration must be > 0", ErrInvalidClip, d.Name)
	case d.BlendOut < 0 || d.BlendOut >= d.Duration:
		return fmt.Errorf("%w: %s: blend_out must be in [0, duration)", ErrInvalidClip, d.Name)
	case len(d.Velocity) != 0 && len(d.Velocity) != 3:
		return fmt.Errorf("%w: %s: velocity needs 3 components", ErrInvalidClip, d.Name)
	}
	prev := 0.0
	for _, w := range d.Warps {
		if w.Target == "" || w.Until <= prev || w.Until > 1 {
			return fmt.Errorf("%w: %s: warp windows must be named and increasing within (0, 1]", ErrInvalidClip, d.Name)
		}
		prev = w.Until
	}
	prev = 0
	for _, p := range d.Phases {
		if p.Until <= prev || p.Until > 1 || len(p.Velocity) != 3 {
			return fmt.Errorf("%w: %s: root phases need 3 components and increasing ends within (0, 1]", ErrInvalidClip, d.Name)
		}
		prev = p.Until
	}
	return nil
}

type Library struct {
	clips map[ClipID]ClipDef
}

func NewLibrary(defs ...ClipDef) (*Library, error) {
	l := &Library{clips: make(map[ClipID]ClipDef, len(defs))}
	var errs []error
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := l.clips[d.ID()]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateClip, d.Name))
			continue
		}
		l.clips[d.ID()] = d
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return l, nil
}

func (l *Library) Get(id ClipID) (ClipDef, bool) {
	d, ok := l.clips[id]
	return d, ok
}

func (l *Library) Len() int {
	return len(l.clips)
}

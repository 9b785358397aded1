// Package debugdraw collects the query shapes issued by the movement code so they
// can be inspected in tests or streamed to a viewer.
package debugdraw

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type Kind string

const (
	KindLine    Kind = "line"
	KindSphere  Kind = "sphere"
	KindCapsule Kind = "capsule"
)

type Shape struct {
	Kind       Kind       `json:"kind"`
	Label      string     `json:"label,omitempty"`
	Start      mgl64.Vec3 `json:"start"`
	End        mgl64.Vec3 `json:"end"`
	Radius     float64    `json:"radius,omitempty"`
	HalfHeight float64    `json:"half_height,omitempty"`
	Hit        bool       `json:"hit"`
	HitPoint   mgl64.Vec3 `json:"hit_point"`
}

type Sink interface {
	Draw(s Shape)
}

type Nop struct{}

func (Nop) Draw(Shape) {}

// Recorder keeps every shape in memory.
type Recorder struct {
	mu     sync.Mutex
	shapes []Shape
}

func (r *Recorder) Draw(s Shape) {
	r.mu.Lock()
	r.shapes = append(r.shapes, s)
	r.mu.Unlock()
}

func (r *Recorder) Shapes() []Shape {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Shape, len(r.shapes))
	copy(out, r.shapes)
	return out
}

// Labeled returns recorded shapes with the given label.
func (r *Recorder) Labeled(label string) []Shape {
	var out []Shape
	for _, s := range r.Shapes() {
		if s.Label == label {
			out = append(out, s)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.shapes = nil
	r.mu.Unlock()
}

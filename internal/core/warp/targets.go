// Package warp keeps the named world points animation root motion is aligned to.
package warp

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Source is the read side used by animation playback.
type Source interface {
	Target(name string) (mgl64.Vec3, bool)
}

// Targets is a keyed set of warp points. Set overwrites, Clear of an unknown name is a no-op.
type Targets struct {
	mu     sync.RWMutex
	points map[string]mgl64.Vec3
}

func NewTargets() *Targets {
	return &Targets{points: make(map[string]mgl64.Vec3)}
}

func (t *Targets) Set(name string, point mgl64.Vec3) {
	t.mu.Lock()
	t.points[name] = point
	t.mu.Unlock()
}

func (t *Targets) Clear(name string) {
	t.mu.Lock()
	delete(t.points, name)
	t.mu.Unlock()
}

func (t *Targets) Target(name string) (mgl64.Vec3, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.points[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (t *Targets) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.points))
	for n := range t.points {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Targets) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}
